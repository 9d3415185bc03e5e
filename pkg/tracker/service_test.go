package tracker_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/larder/pkg/adapters/fs"
	"github.com/aretw0/larder/pkg/core"
	"github.com/aretw0/larder/pkg/entry"
	"github.com/aretw0/larder/pkg/format"
	"github.com/aretw0/larder/pkg/nutrient"
	"github.com/aretw0/larder/pkg/settings"
	"github.com/aretw0/larder/pkg/tracker"
)

func writeNote(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

// setupVault creates a vault with a couple of nutrient notes and a refreshed service.
func setupVault(t *testing.T, store *settings.Store) (*tracker.Service, *fs.Repository, string) {
	t.Helper()
	root := t.TempDir()
	writeNote(t, root, "nutrients/oats.md", "---\nname: Oats\ncalories: 100\nprotein: 10\n---\n")
	writeNote(t, root, "nutrients/milk.md", "---\ncalories: \"42\"\ncarbohydrates: 5\nfat: 1\n---\n")
	writeNote(t, root, "journal/today.md", "#food [[Oats]] 80g\n")

	repo := fs.NewRepository(fs.Config{Path: root})
	require.NoError(t, repo.Initialize(context.Background()))

	svc, err := tracker.New(tracker.Config{Repository: repo, Settings: store})
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	require.NoError(t, svc.Refresh(context.Background()))
	return svc, repo, root
}

func TestRefreshSelectsNutrientNotes(t *testing.T) {
	svc, _, _ := setupVault(t, nil)
	assert.Equal(t, []string{"Oats", "milk"}, svc.Names())
}

func TestCompute(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := setupVault(t, nil)

	t.Run("Inline Round Trip", func(t *testing.T) {
		rep, ok := svc.Compute(ctx, "#food Snack 120kcal 5fat")
		require.True(t, ok)

		energy, found := rep.Summary.Item(nutrient.Energy)
		require.True(t, found)
		assert.Equal(t, "120", energy.Display)
		fat, found := rep.Summary.Item(nutrient.Fat)
		require.True(t, found)
		assert.Equal(t, "5.0", fat.Display)
	})

	t.Run("Mixed Sources", func(t *testing.T) {
		rep, ok := svc.Compute(ctx, "breakfast\n#food [[Oats]] 150g\n#food Coffee 200kcal\n#food [[milk]] 1 cup")
		require.True(t, ok)
		assert.InDelta(t, 350+100.8, rep.Totals[nutrient.Energy], 1e-9)
		assert.InDelta(t, 15, rep.Totals[nutrient.Protein], 1e-9)
		assert.InDelta(t, 12, rep.Totals[nutrient.Carbs], 1e-9)
	})

	t.Run("No Entries", func(t *testing.T) {
		rep, ok := svc.Compute(ctx, "nothing eaten today")
		assert.False(t, ok)
		assert.False(t, rep.HasData)
	})

	t.Run("Unresolved Only", func(t *testing.T) {
		rep, ok := svc.Compute(ctx, "#food [[Durian]] 100g")
		assert.False(t, ok, "nothing to display")
		assert.True(t, rep.HasData, "but something was logged")
	})

	t.Run("Byte Identical On Repeat", func(t *testing.T) {
		text := "#food [[Oats]] 80g\n#food Bar 210kcal 9fat 20prot"
		first, _ := svc.Compute(ctx, text)
		for i := 0; i < 3; i++ {
			again, _ := svc.Compute(ctx, text)
			assert.Equal(t, format.Text(first.Summary), format.Text(again.Summary))
		}
	})
}

func TestComputeNote(t *testing.T) {
	svc, _, _ := setupVault(t, nil)

	rep, ok, err := svc.ComputeNote(context.Background(), "journal/today")
	require.NoError(t, err)
	require.True(t, ok)
	assert.InDelta(t, 80, rep.Totals[nutrient.Energy], 1e-9)

	_, _, err = svc.ComputeNote(context.Background(), "journal/missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGoals(t *testing.T) {
	ctx := context.Background()
	s := settings.Default()
	s.Goals = map[string]float64{"energy": 2000, "protein": 100}
	s.GoalsNote = "goals"
	store := settings.NewStore(s)
	svc, _, root := setupVault(t, store)

	assert.Equal(t, nutrient.Goals{nutrient.Energy: 2000, nutrient.Protein: 100}, svc.Goals(ctx))

	writeNote(t, root, "goals.md", "---\ncalories: 80\n---\n")
	assert.Equal(t, nutrient.Goals{nutrient.Energy: 80, nutrient.Protein: 100}, svc.Goals(ctx))

	rep, ok := svc.Compute(ctx, "#food [[Oats]] 80g")
	require.True(t, ok)
	energy, _ := rep.Summary.Item(nutrient.Energy)
	require.NotNil(t, energy.Progress)
	assert.Equal(t, format.StatusOnTarget, energy.Progress.Status)
	assert.Equal(t, 100, energy.Progress.Percent)
}

func TestApply(t *testing.T) {
	ctx := context.Background()
	svc, _, root := setupVault(t, nil)

	t.Run("Modify Then Rename", func(t *testing.T) {
		writeNote(t, root, "nutrients/milk.md", "---\nname: Whole Milk\ncalories: 64\n---\n")
		require.NoError(t, svc.Apply(ctx, core.Event{Type: core.EventModify, ID: "nutrients/milk"}))

		_, ok := svc.Index().LookupByName("milk")
		assert.False(t, ok)
		rec, ok := svc.Index().LookupByName("Whole Milk")
		require.True(t, ok)
		assert.Equal(t, 64.0, rec.Values[nutrient.Energy])
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, os.Remove(filepath.Join(root, "nutrients", "oats.md")))
		require.NoError(t, svc.Apply(ctx, core.Event{Type: core.EventDelete, ID: "nutrients/oats"}))
		_, ok := svc.Index().LookupByName("Oats")
		assert.False(t, ok)
	})

	t.Run("Create Of Vanished Note", func(t *testing.T) {
		assert.NoError(t, svc.Apply(ctx, core.Event{Type: core.EventCreate, ID: "nutrients/ghost"}))
	})

	t.Run("Notes Outside Pattern Are Ignored", func(t *testing.T) {
		writeNote(t, root, "journal/bar.md", "---\nname: Bar\ncalories: 1\n---\n")
		require.NoError(t, svc.Apply(ctx, core.Event{Type: core.EventCreate, ID: "journal/bar"}))
		_, ok := svc.Index().LookupByName("Bar")
		assert.False(t, ok)
	})

	state, ok := svc.State().(tracker.ServiceState)
	require.True(t, ok)
	assert.Equal(t, 4, state.EventsApplied)
	assert.Equal(t, "repository", state.RepositoryType)
}

func TestSettingsChanges(t *testing.T) {
	ctx := context.Background()
	store := settings.NewStore(settings.Default())
	svc, _, root := setupVault(t, store)

	t.Run("Tag", func(t *testing.T) {
		require.NoError(t, store.Update(func(s *settings.Settings) { s.Tag = "meal" }))
		_, ok := svc.Compute(ctx, "#food Snack 100kcal")
		assert.False(t, ok)
		_, ok = svc.Compute(ctx, "#meal Snack 100kcal")
		assert.True(t, ok)
	})

	t.Run("Nutrient Pattern", func(t *testing.T) {
		writeNote(t, root, "pantry/rice.md", "---\nname: Rice\ncalories: 130\n---\n")
		require.NoError(t, store.Update(func(s *settings.Settings) { s.Nutrients = "pantry/*" }))
		assert.Equal(t, []string{"Rice"}, svc.Names())
	})

	t.Run("Unsubscribed After Close", func(t *testing.T) {
		svc.Close()
		require.NoError(t, store.Update(func(s *settings.Settings) { s.Tag = "snack" }))
		assert.Equal(t, "meal", svc.Settings().Tag)
	})
}

func TestHighlightsAndSuggest(t *testing.T) {
	svc, _, _ := setupVault(t, nil)

	ranges := svc.Highlights("#food [[Oats]] 80g")
	assert.Equal(t, []entry.Range{{Start: 15, End: 18, Kind: entry.RangeAmount}}, ranges)

	sug, ok := svc.Suggest("#food o", 7, 5)
	require.True(t, ok)
	assert.Equal(t, []string{"Oats"}, sug.Candidates)

	sug, ok = svc.Suggest("#food [[Oats]] 2 c", 18, 5)
	require.True(t, ok)
	assert.Equal(t, []string{"cup", "cups"}, sug.Candidates)
}

func TestRun(t *testing.T) {
	_, _, root := setupVault(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	applied := make(chan core.Event, 16)
	svc, err := tracker.New(tracker.Config{
		Repository: fs.NewRepository(fs.Config{Path: root}),
		OnApply: func(e core.Event) {
			select {
			case applied <- e:
			default:
			}
		},
	})
	require.NoError(t, err)
	defer svc.Close()
	require.NoError(t, svc.Refresh(ctx))

	done := make(chan error, 1)
	go func() { done <- svc.Run(ctx) }()
	time.Sleep(150 * time.Millisecond)

	writeNote(t, root, "nutrients/egg.md", "---\nname: Egg\ncalories: 155\n---\n")

	deadline := time.After(3 * time.Second)
	for {
		if _, ok := svc.Index().LookupByName("Egg"); ok {
			break
		}
		select {
		case <-applied:
		case <-deadline:
			t.Fatal("egg was never indexed")
		}
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunRequiresWatchable(t *testing.T) {
	svc, err := tracker.New(tracker.Config{Repository: staticRepo{}})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Run(context.Background()), core.ErrNotWatchable)
}

type staticRepo struct{}

func (staticRepo) Get(ctx context.Context, id string) (core.Document, error) {
	return core.Document{}, core.ErrNotFound
}
func (staticRepo) Keys(ctx context.Context) ([]string, error)        { return nil, nil }
func (staticRepo) List(ctx context.Context) ([]core.Document, error) { return nil, nil }
func (staticRepo) Save(ctx context.Context, doc core.Document) error { return core.ErrReadOnly }
func (staticRepo) Delete(ctx context.Context, id string) error       { return core.ErrReadOnly }
func (staticRepo) Initialize(ctx context.Context) error              { return nil }
