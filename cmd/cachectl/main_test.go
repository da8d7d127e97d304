package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCache(t *testing.T, entries map[string]time.Time) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "processed_postings.json")
	var b bytes.Buffer
	b.WriteString("{")
	first := true
	for k, at := range entries {
		if !first {
			b.WriteString(",")
		}
		first = false
		b.WriteString(`"` + k + `":"` + at.UTC().Format("2006-01-02T15:04:05.000Z07:00") + `"`)
	}
	b.WriteString("}")
	require.NoError(t, os.WriteFile(path, b.Bytes(), 0o644))
	return path
}

func TestRun_ListEvictRemoveClear(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	path := writeCache(t, map[string]time.Time{
		"old":   now.Add(-48 * time.Hour),
		"fresh": now.Add(-time.Hour),
		"newer": now.Add(-time.Minute),
	})

	var out bytes.Buffer
	require.NoError(t, run(ctx, "list", []string{"-file", path}, &out))
	assert.Contains(t, out.String(), "total: 3")
	assert.Less(t, bytes.Index(out.Bytes(), []byte("old")), bytes.Index(out.Bytes(), []byte("fresh")))

	out.Reset()
	require.NoError(t, run(ctx, "evict", []string{"-file", path, "-older", "24h"}, &out))
	assert.Contains(t, out.String(), "evicted: 1")

	out.Reset()
	require.NoError(t, run(ctx, "remove", []string{"-file", path, "-key", "fresh"}, &out))
	out.Reset()
	require.NoError(t, run(ctx, "list", []string{"-file", path}, &out))
	assert.Contains(t, out.String(), "newer")
	assert.Contains(t, out.String(), "total: 1")

	out.Reset()
	require.NoError(t, run(ctx, "clear", []string{"-file", path}, &out))
	out.Reset()
	require.NoError(t, run(ctx, "list", []string{"-file", path}, &out))
	assert.Contains(t, out.String(), "total: 0")
}

func TestRun_Errors(t *testing.T) {
	ctx := context.Background()
	var out bytes.Buffer

	assert.Error(t, run(ctx, "list", nil, &out), "missing -file")

	path := writeCache(t, map[string]time.Time{"k": time.Now()})
	assert.Error(t, run(ctx, "remove", []string{"-file", path}, &out), "missing -key")
	assert.Error(t, run(ctx, "frobnicate", []string{"-file", path}, &out))
}

func TestCheck(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer

	good := writeCache(t, map[string]time.Time{"a": time.Now()})
	require.NoError(t, check(good, false, &out))
	assert.Contains(t, out.String(), "1 valid / 0 invalid")

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"a":"yesterday"}`), 0o644))
	assert.Error(t, check(bad, false, &out))

	settings := filepath.Join(dir, "bot_settings.json")
	require.NoError(t, os.WriteFile(settings, []byte(`{"password":"p","messageTemplate":"hi","secondMessageTemplate":"bye","sendMessages":true,"sendSecondMessage":false,"logChatIds":[1,2]}`), 0o644))
	out.Reset()
	require.NoError(t, check(settings, true, &out))
	assert.Contains(t, out.String(), "log chats=2")
}
