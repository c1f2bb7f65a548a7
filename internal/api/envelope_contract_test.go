package api

import (
	"encoding/json/v2"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixturePath locates testdata/envelope at the repo root. Client apps embed
// the same fixtures, so these tests pin the wire contract on both sides.
func fixturePath(t *testing.T, name string) string {
	_, filename, _, ok := runtime.Caller(0)
	require.True(t, ok, "failed to get caller info")

	repoRoot := filepath.Dir(filepath.Dir(filepath.Dir(filename)))
	return filepath.Join(repoRoot, "testdata", "envelope", name)
}

func loadFixture(t *testing.T, name string) map[string]any {
	raw, err := os.ReadFile(fixturePath(t, name))
	require.NoError(t, err, "contract tests require the shared fixtures")

	var fixture map[string]any
	require.NoError(t, json.Unmarshal(raw, &fixture))
	return fixture
}

func transformToMap(t *testing.T, status string, body any) map[string]any {
	result, err := EnvelopeTransformer(nil, status, body)
	require.NoError(t, err)

	raw, err := json.Marshal(result)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestEnvelopeContract_Success(t *testing.T) {
	expected := loadFixture(t, "success.json")
	got := transformToMap(t, "200", map[string]string{"id": "test-123", "name": "Test Item"})

	assert.Equal(t, expected["v"], got["v"])
	assert.Equal(t, expected["success"], got["success"])
	assert.Contains(t, got, "data")

	for key := range got {
		assert.Contains(t, expected, key, "unexpected field in server output: %s", key)
	}
}

func TestEnvelopeContract_SuccessNullData(t *testing.T) {
	expected := loadFixture(t, "success_null_data.json")
	got := transformToMap(t, "204", nil)

	assert.Equal(t, expected["v"], got["v"])
	assert.Equal(t, expected["success"], got["success"])
}

func TestEnvelopeContract_SimpleError(t *testing.T) {
	expected := loadFixture(t, "error_simple.json")
	got := transformToMap(t, "404", &APIError{Message: "Resource not found"})

	assert.Equal(t, expected["v"], got["v"])
	assert.Equal(t, expected["success"], got["success"])
	assert.IsType(t, "", got["error"], "error must be a string")
}

func TestEnvelopeContract_DetailedError(t *testing.T) {
	expected := loadFixture(t, "error_detailed.json")
	got := transformToMap(t, "409", &APIError{
		Code:    "conflict",
		Message: "Entity already exists",
		Details: map[string]string{"existing_id": "abc-123"},
	})

	assert.Equal(t, expected["v"], got["v"])
	assert.Contains(t, got, "code")
	assert.Contains(t, got, "message")
	assert.Contains(t, got, "details")
	assert.IsType(t, "", got["code"])
	assert.IsType(t, "", got["message"])
}

// The version field is named exactly "v". Renaming it breaks clients
// silently, so it gets its own test.
func TestEnvelopeContract_VersionFieldName(t *testing.T) {
	got := transformToMap(t, "200", nil)

	assert.Contains(t, got, "v")
	assert.NotContains(t, got, "version")
	assert.NotContains(t, got, "Version")
}
