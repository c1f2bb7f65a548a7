package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/guildhallapp/guildhall-server/internal/config"
	"github.com/guildhallapp/guildhall-server/internal/logger"
	"github.com/guildhallapp/guildhall-server/internal/search"
	"github.com/guildhallapp/guildhall-server/internal/service"
)

// MemberIndexHandle wraps the member search index with shutdown capability.
type MemberIndexHandle struct {
	*search.MemberIndex
}

// Shutdown implements do.Shutdownable.
func (h *MemberIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideMemberIndex provides the Bleve member search index and wires it
// into the store so user and roster writes index synchronously.
func ProvideMemberIndex(i do.Injector) (*MemberIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewMemberIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	storeHandle.SetSearchIndexer(index)

	docCount, _ := index.DocumentCount()
	log.Info("Member search index initialized", "documents", docCount)

	return &MemberIndexHandle{MemberIndex: index}, nil
}

// TriggerSearchBackfillIfNeeded rebuilds the member index when it is empty
// but members exist, e.g. after an index format upgrade or a deleted index
// directory. Should be called after all services are wired.
func TriggerSearchBackfillIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*MemberIndexHandle](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	memberService := do.MustInvoke[*service.MemberService](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	ctx := context.Background()
	users, err := storeHandle.ListUsers(ctx)
	if err != nil || len(users) == 0 {
		return
	}

	log.Info("Member index is empty but members exist, triggering backfill",
		"member_count", len(users),
	)

	go func() {
		backfillCtx := context.Background()
		if err := memberService.BackfillSearchIndex(backfillCtx); err != nil {
			log.Error("Member index backfill failed", "error", err)
			return
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Member index backfill completed", "documents", count)
	}()
}
