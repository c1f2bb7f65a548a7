package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/guildhallapp/guildhall-server/internal/search"
	"github.com/guildhallapp/guildhall-server/internal/service"
)

func (s *Server) registerMemberRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listMembers",
		Method:      http.MethodGet,
		Path:        "/api/v1/members",
		Summary:     "List members",
		Description: "Returns the guild member directory with resolved avatars",
		Tags:        []string{"Members"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMembers)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchMembers",
		Method:      http.MethodGet,
		Path:        "/api/v1/members/search",
		Summary:     "Search members",
		Description: "Full-text search over member display names and character names, with game and role filters",
		Tags:        []string{"Members"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchMembers)

	huma.Register(s.api, huma.Operation{
		OperationID: "getMember",
		Method:      http.MethodGet,
		Path:        "/api/v1/members/{id}",
		Summary:     "Get member",
		Description: "Returns one member's directory entry with a resolved avatar",
		Tags:        []string{"Members"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetMember)
}

// === Request/Response Types ===

// ListMembersInput carries the optional game context for avatar resolution.
type ListMembersInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	Game          string `query:"game" doc:"Game slug for contextual character portraits"`
}

// MemberResponse is one directory entry.
type MemberResponse struct {
	UserID      string                 `json:"user_id" doc:"Member user ID"`
	DisplayName string                 `json:"display_name" doc:"Display name"`
	Role        string                 `json:"role" doc:"Role (admin or member)"`
	Avatar      ResolvedAvatarResponse `json:"avatar" doc:"Resolved avatar for display"`
	Initials    string                 `json:"initials" doc:"Initials for the placeholder avatar"`
	AvatarColor string                 `json:"avatar_color" doc:"Deterministic placeholder color"`
	Characters  []CharacterPortrait    `json:"characters,omitempty" doc:"Character portraits by game"`
}

// CharacterPortrait is the avatar-relevant slice of a roster character.
type CharacterPortrait struct {
	GameID    string `json:"game_id" doc:"Game slug"`
	Name      string `json:"name,omitempty" doc:"Character name"`
	AvatarURL string `json:"avatar_url,omitempty" doc:"Portrait image URL"`
}

// MembersOutput wraps the member list for Huma.
type MembersOutput struct {
	Body struct {
		Members []MemberResponse `json:"members" doc:"Directory entries"`
	}
}

// GetMemberInput identifies one member.
type GetMemberInput struct {
	Authorization string `header:"Authorization" doc:"Bearer token"`
	ID            string `path:"id" doc:"Member user ID"`
	Game          string `query:"game" doc:"Game slug for contextual character portraits"`
}

// MemberOutput wraps one member for Huma.
type MemberOutput struct {
	Body MemberResponse
}

// SearchMembersInput contains the member search request.
type SearchMembersInput struct {
	Authorization string   `header:"Authorization" doc:"Bearer token"`
	Query         string   `query:"q" doc:"Search query"`
	Games         []string `query:"game" doc:"Filter to members with characters in these games"`
	Realms        []string `query:"realm" doc:"Filter to members with characters on these realms"`
	Roles         []string `query:"role" doc:"Filter by role"`
	Limit         int      `query:"limit" doc:"Maximum results (default 20, max 100)"`
	Offset        int      `query:"offset" doc:"Result offset for pagination"`
	Sort          string   `query:"sort" enum:"relevance,name,recent" doc:"Sort order"`
	Facets        bool     `query:"facets" doc:"Include facet counts"`
}

// SearchHitResponse is one search result.
type SearchHitResponse struct {
	ID         string            `json:"id" doc:"Member user ID"`
	Score      float64           `json:"score" doc:"Relevance score"`
	Name       string            `json:"name" doc:"Display name"`
	Characters []string          `json:"characters,omitempty" doc:"Character names"`
	Games      []string          `json:"games,omitempty" doc:"Game slugs"`
	Role       string            `json:"role" doc:"Role"`
	Highlights map[string]string `json:"highlights,omitempty" doc:"Highlighted match fragments"`
}

// FacetCountResponse is one facet bucket.
type FacetCountResponse struct {
	Value string `json:"value" doc:"Facet value"`
	Count int    `json:"count" doc:"Matching members"`
}

// SearchMembersOutput wraps the search result for Huma.
type SearchMembersOutput struct {
	Body struct {
		Hits   []SearchHitResponse             `json:"hits" doc:"Search results"`
		Total  uint64                          `json:"total" doc:"Total matching members"`
		Facets map[string][]FacetCountResponse `json:"facets,omitempty" doc:"Facet counts by field"`
	}
}

// === Handlers ===

func (s *Server) handleListMembers(ctx context.Context, input *ListMembersInput) (*MembersOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	members, err := s.services.Member.ListMembers(ctx, input.Game)
	if err != nil {
		return nil, err
	}

	out := &MembersOutput{}
	out.Body.Members = make([]MemberResponse, 0, len(members))
	for _, m := range members {
		out.Body.Members = append(out.Body.Members, mapMemberSummary(m))
	}
	return out, nil
}

func (s *Server) handleGetMember(ctx context.Context, input *GetMemberInput) (*MemberOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	member, err := s.services.Member.GetMember(ctx, input.ID, input.Game)
	if err != nil {
		return nil, err
	}

	return &MemberOutput{Body: mapMemberSummary(*member)}, nil
}

func (s *Server) handleSearchMembers(ctx context.Context, input *SearchMembersInput) (*SearchMembersOutput, error) {
	if _, err := GetUserID(ctx); err != nil {
		return nil, err
	}

	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Games = input.Games
	params.Realms = input.Realms
	params.Roles = input.Roles
	params.Offset = input.Offset
	params.IncludeFacets = input.Facets
	if input.Limit > 0 {
		params.Limit = input.Limit
	}
	if input.Sort != "" && input.Sort != "relevance" {
		params.SortBy = input.Sort
	}

	result, err := s.services.Member.SearchMembers(ctx, params)
	if err != nil {
		return nil, err
	}

	out := &SearchMembersOutput{}
	out.Body.Total = result.Total
	out.Body.Hits = make([]SearchHitResponse, 0, len(result.Hits))
	for _, hit := range result.Hits {
		out.Body.Hits = append(out.Body.Hits, SearchHitResponse{
			ID:         hit.ID,
			Score:      hit.Score,
			Name:       hit.Name,
			Characters: hit.Characters,
			Games:      hit.Games,
			Role:       hit.Role,
			Highlights: hit.Highlights,
		})
	}
	if input.Facets {
		out.Body.Facets = mapFacets(result.Facets)
	}
	return out, nil
}

// === Helpers ===

func mapMemberSummary(m service.MemberSummary) MemberResponse {
	resp := MemberResponse{
		UserID:      m.UserID,
		DisplayName: m.DisplayName,
		Role:        string(m.Role),
		Avatar:      mapResolvedAvatar(m.Avatar),
		Initials:    m.Initials,
		AvatarColor: m.AvatarColor,
	}
	for _, p := range m.Characters {
		resp.Characters = append(resp.Characters, CharacterPortrait{
			GameID:    p.GameID,
			Name:      p.Name,
			AvatarURL: p.AvatarURL,
		})
	}
	return resp
}

func mapFacets(facets search.SearchFacets) map[string][]FacetCountResponse {
	out := make(map[string][]FacetCountResponse)
	if len(facets.Games) > 0 {
		out["games"] = mapFacetCounts(facets.Games)
	}
	if len(facets.Roles) > 0 {
		out["role"] = mapFacetCounts(facets.Roles)
	}
	return out
}

func mapFacetCounts(counts []search.FacetCount) []FacetCountResponse {
	out := make([]FacetCountResponse, 0, len(counts))
	for _, c := range counts {
		out = append(out, FacetCountResponse{Value: c.Value, Count: c.Count})
	}
	return out
}
