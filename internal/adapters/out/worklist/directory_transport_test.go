package worklist_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	adapter "radiology/internal/adapters/out/worklist"
	"radiology/internal/core/domain/model/worklist"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirectoryTransport_ItemLifecycle(t *testing.T) {
	dir := t.TempDir()
	transport, err := adapter.NewDirectoryTransport(dir)
	require.NoError(t, err)
	item := filepath.Join(dir, "0D6A7C528F1E4B2A"+adapter.ItemSuffix)

	result, err := transport.Send(t.Context(), worklist.Save, descriptor())
	require.NoError(t, err)
	assert.Equal(t, worklist.OutcomeOK, result.Outcome)

	var written struct {
		Operation string         `json:"operation"`
		Study     map[string]any `json:"study"`
	}
	raw, err := os.ReadFile(item)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &written))
	assert.Equal(t, "SAVE", written.Operation)
	assert.Equal(t, "STAT", written.Study["priority"])

	updated := descriptor()
	updated.Priority = "LOW"
	_, err = transport.Send(t.Context(), worklist.Update, updated)
	require.NoError(t, err)
	raw, err = os.ReadFile(item)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &written))
	assert.Equal(t, "UPDATE", written.Operation)
	assert.Equal(t, "LOW", written.Study["priority"])

	result, err = transport.Send(t.Context(), worklist.Void, descriptor())
	require.NoError(t, err)
	assert.Equal(t, worklist.OutcomeOK, result.Outcome)
	assert.NoFileExists(t, item)

	result, err = transport.Send(t.Context(), worklist.Discontinue, descriptor())
	require.NoError(t, err)
	assert.Equal(t, worklist.OutcomeOK, result.Outcome, "removing a missing item is idempotent")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no temp files are left behind")
}

func TestDirectoryTransport_InvalidAccessionIsFailed(t *testing.T) {
	transport, err := adapter.NewDirectoryTransport(t.TempDir())
	require.NoError(t, err)

	for _, accession := range []string{"", "  ", "../escape", ".."} {
		d := descriptor()
		d.AccessionNumber = accession
		result, err := transport.Send(t.Context(), worklist.Save, d)
		require.NoError(t, err)
		assert.Equal(t, worklist.OutcomeFailed, result.Outcome, accession)
		assert.NotEmpty(t, result.Reason)
	}
}

func TestDirectoryTransport_ExpiredContext(t *testing.T) {
	transport, err := adapter.NewDirectoryTransport(t.TempDir())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(t.Context(), 0)
	defer cancel()
	<-ctx.Done()

	result, err := transport.Send(ctx, worklist.Save, descriptor())
	require.NoError(t, err)
	assert.Equal(t, worklist.OutcomeTimeout, result.Outcome)

	cancelled, cancelNow := context.WithCancel(t.Context())
	cancelNow()
	_, err = transport.Send(cancelled, worklist.Save, descriptor())
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewDirectoryTransport_RequiresDirectory(t *testing.T) {
	_, err := adapter.NewDirectoryTransport(" ")
	require.Error(t, err)
}

func TestReadItems(t *testing.T) {
	dir := t.TempDir()
	transport, err := adapter.NewDirectoryTransport(dir)
	require.NoError(t, err)

	first := descriptor()
	second := descriptor()
	second.AccessionNumber = "1A2B3C4D5E6F7A8B"
	second.Modality = "MR"
	_, err = transport.Send(t.Context(), worklist.Save, first)
	require.NoError(t, err)
	_, err = transport.Send(t.Context(), worklist.Save, second)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	items, err := adapter.ReadItems(dir)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, first.AccessionNumber, items[0].AccessionNumber)
	assert.Equal(t, "MR", items[1].Modality)

	_, err = transport.Send(t.Context(), worklist.Void, first)
	require.NoError(t, err)
	items, err = adapter.ReadItems(dir)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestReadItems_MissingDirectory(t *testing.T) {
	_, err := adapter.ReadItems(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
