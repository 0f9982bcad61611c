package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()
	gs, err := NewGormStorage("sqlite", filepath.Join(t.TempDir(), "ebillcalc.db"))
	require.NoError(t, err)
	require.NoError(t, gs.Migrate(context.Background()))
	t.Cleanup(func() { gs.Close() })
	return map[string]Storage{
		"memory": NewMemory(),
		"sqlite": gs,
	}
}

func TestStorage_Tariffs(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			got, err := st.GetTariff(ctx, "bpdb")
			require.NoError(t, err)
			assert.Nil(t, got)

			require.NoError(t, st.UpsertTariff(ctx, Tariff{Key: "desco", Name: "DESCO"}))
			require.NoError(t, st.UpsertTariff(ctx, Tariff{Key: "bpdb", Name: "BPDB"}))
			require.NoError(t, st.UpsertTariff(ctx, Tariff{Key: "bpdb", Name: "BPDB Residential", Currency: "BDT"}))

			list, err := st.ListTariffs(ctx)
			require.NoError(t, err)
			require.Len(t, list, 2)
			assert.Equal(t, "bpdb", list[0].Key)
			assert.Equal(t, "BPDB Residential", list[0].Name)

			got, err = st.GetTariff(ctx, "bpdb")
			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, "BDT", got.Currency)
		})
	}
}

func TestStorage_TariffSnapshots(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			snap, err := st.GetTariffSnapshot(ctx, "bpdb")
			require.NoError(t, err)
			assert.Nil(t, snap)

			t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
			require.NoError(t, st.SaveTariffSnapshot(ctx, TariffSnapshot{Tariff: "bpdb", Payload: []byte(`[1]`), Source: "pdf", FetchedAt: t0}))
			require.NoError(t, st.SaveTariffSnapshot(ctx, TariffSnapshot{Tariff: "bpdb", Payload: []byte(`[2]`), Source: "pdf", FetchedAt: t0.Add(time.Hour)}))

			snap, err = st.GetTariffSnapshot(ctx, "bpdb")
			require.NoError(t, err)
			require.NotNil(t, snap)
			assert.Equal(t, `[2]`, string(snap.Payload))
			assert.Equal(t, "pdf", snap.Source)
		})
	}
}

func TestStorage_Preferences(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			p, err := st.GetPreferences(ctx, "alice")
			require.NoError(t, err)
			assert.Nil(t, p)

			require.NoError(t, st.SavePreferences(ctx, Preferences{Owner: "alice", Visited: true}))
			require.NoError(t, st.SavePreferences(ctx, Preferences{Owner: "alice", Visited: true, DarkMode: true}))

			p, err = st.GetPreferences(ctx, "alice")
			require.NoError(t, err)
			require.NotNil(t, p)
			assert.True(t, p.DarkMode)
			assert.True(t, p.Visited)
			assert.False(t, p.UpdatedAt.IsZero())
		})
	}
}

func TestStorage_SettingsAndJobs(t *testing.T) {
	ctx := context.Background()
	for name, st := range backends(t) {
		t.Run(name, func(t *testing.T) {
			v, err := st.GetSetting(ctx, "missing")
			require.NoError(t, err)
			assert.Empty(t, v)

			require.NoError(t, st.SetSetting(ctx, "refresh_interval", "3600"))
			require.NoError(t, st.SetSetting(ctx, "refresh_interval", "@hourly"))
			v, err = st.GetSetting(ctx, "refresh_interval")
			require.NoError(t, err)
			assert.Equal(t, "@hourly", v)

			ok, err := st.AcquireAdvisoryLock(ctx, 42)
			require.NoError(t, err)
			assert.True(t, ok)
			ok, err = st.ReleaseAdvisoryLock(ctx, 42)
			require.NoError(t, err)
			assert.True(t, ok)

			started := time.Now().UTC().Truncate(time.Second)
			require.NoError(t, st.UpdateScheduledJob(ctx, "tariff_refresh", started, 1500*time.Millisecond, false, "boom"))
			job, err := st.GetScheduledJob(ctx, "tariff_refresh")
			require.NoError(t, err)
			require.NotNil(t, job)
			assert.Equal(t, int64(1500), job.LastDurationMs)
			assert.Equal(t, 0, job.LastSuccess)
			assert.Equal(t, "boom", job.LastError)
		})
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	st, err := Open(ctx, Config{Tariffs: []Tariff{{Key: "bpdb"}}})
	require.NoError(t, err)
	_, isMem := st.(*MemoryStorage)
	assert.True(t, isMem)
	list, err := st.ListTariffs(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	st, err = Open(ctx, Config{Driver: "sqlite", DSN: filepath.Join(t.TempDir(), "x.db"), Tariffs: []Tariff{{Key: "bpdb", Name: "BPDB"}}})
	require.NoError(t, err)
	defer st.Close()
	got, err := st.GetTariff(ctx, "bpdb")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "BPDB", got.Name)

	_, err = Open(ctx, Config{Driver: "mongo"})
	assert.Error(t, err)
}
