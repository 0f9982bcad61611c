package rates

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bher20/ebillcalc/internal/billing"
	"github.com/bher20/ebillcalc/internal/storage"
)

func TestTariffs_Default(t *testing.T) {
	t.Setenv(tariffsEnv, "")
	list := Tariffs()
	require.Len(t, list, 1)
	assert.Equal(t, DefaultTariff, list[0].Key)

	got, ok := GetTariff("BPDB")
	require.True(t, ok)
	assert.Len(t, got.Bands, 5)
}

func TestTariffs_EnvOverride(t *testing.T) {
	t.Setenv(tariffsEnv, `[{"key":"desco","name":"DESCO","currency":"BDT","bands":[{"lower":0,"upper":100,"rate":"4"},{"lower":101,"upper":-1,"rate":"6"}]}]`)
	list := Tariffs()
	require.Len(t, list, 1)
	assert.Equal(t, "desco", list[0].Key)

	t.Setenv(tariffsEnv, `not json`)
	assert.Equal(t, DefaultTariff, Tariffs()[0].Key)
}

func TestGetSchedule_BuiltinAndCache(t *testing.T) {
	t.Setenv(tariffsEnv, "")
	ctx := context.Background()
	st := storage.NewMemory()
	svc := NewServiceWithStorage(Config{}, st)

	sched, err := svc.GetSchedule(ctx, DefaultTariff)
	require.NoError(t, err)
	assert.Len(t, sched.Bands(), 5)

	snap, err := st.GetTariffSnapshot(ctx, DefaultTariff)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, "builtin", snap.Source)

	// A newer snapshot wins over the built-in bands.
	payload, err := json.Marshal(Snapshot{
		Tariff: DefaultTariff,
		Bands: []billing.RateBand{
			{Lower: 0, Upper: 10, Rate: decimal.NewFromInt(1)},
			{Lower: 11, Upper: billing.Unbounded, Rate: decimal.NewFromInt(2)},
		},
	})
	require.NoError(t, err)
	require.NoError(t, st.SaveTariffSnapshot(ctx, storage.TariffSnapshot{Tariff: DefaultTariff, Payload: payload}))

	sched, err = svc.GetSchedule(ctx, DefaultTariff)
	require.NoError(t, err)
	assert.Len(t, sched.Bands(), 2)
}

func TestGetSchedule_Unknown(t *testing.T) {
	svc := NewServiceWithStorage(Config{}, storage.NewMemory())
	_, err := svc.GetSchedule(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrUnknownTariff))
}

func TestGetSchedule_MissingPDFFallsBack(t *testing.T) {
	t.Setenv(tariffsEnv, "")
	svc := NewService(Config{PDFPaths: map[string]string{"bpdb": filepath.Join(t.TempDir(), "missing.pdf")}})

	sched, err := svc.GetSchedule(context.Background(), DefaultTariff)
	require.NoError(t, err)
	assert.Len(t, sched.Bands(), 5)

	_, err = svc.ForceRefresh(context.Background(), DefaultTariff)
	assert.Error(t, err)
}

func TestListTariffs_MergesStorage(t *testing.T) {
	t.Setenv(tariffsEnv, "")
	st := storage.NewMemoryWithTariffs([]storage.Tariff{{Key: "bpdb"}, {Key: "nesco", Name: "NESCO"}})
	svc := NewServiceWithStorage(Config{}, st)

	list, err := svc.ListTariffs(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "nesco", list[1].Key)

	refreshable, err := NewServiceWithStorage(Config{PDFPaths: map[string]string{"nesco": "/data/nesco.pdf"}}, st).Refreshable(context.Background())
	require.NoError(t, err)
	require.Len(t, refreshable, 1)
	assert.Equal(t, "/data/nesco.pdf", refreshable[0].PDFPath)
}

func TestImportPDF_Errors(t *testing.T) {
	svc := NewServiceWithStorage(Config{}, storage.NewMemory())
	_, err := svc.ImportPDF(context.Background(), "", "x.pdf")
	assert.True(t, errors.Is(err, billing.ErrValidation))

	_, err = svc.ImportPDF(context.Background(), "bpdb", filepath.Join(t.TempDir(), "none.pdf"))
	assert.Error(t, err)
}
