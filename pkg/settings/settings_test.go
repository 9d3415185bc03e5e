package settings_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/larder/pkg/nutrient"
	"github.com/aretw0/larder/pkg/settings"
)

func TestLoad(t *testing.T) {
	t.Run("Missing File Yields Defaults", func(t *testing.T) {
		s, err := settings.Load(filepath.Join(t.TempDir(), settings.FileName))
		require.NoError(t, err)
		assert.Equal(t, settings.Default(), s)
	})

	t.Run("Partial File Keeps Defaults", func(t *testing.T) {
		dir := t.TempDir()
		content := "tag: '#meal'\ngoals:\n  calories: 2000\n  protein: 120\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, settings.FileName), []byte(content), 0644))

		s, err := settings.LoadDir(dir)
		require.NoError(t, err)
		assert.Equal(t, "meal", s.Tag)
		assert.Equal(t, settings.DefaultNutrients, s.Nutrients)
		assert.Equal(t, settings.DisplayStatus, s.Display)
		assert.Equal(t, nutrient.Goals{nutrient.Energy: 2000, nutrient.Protein: 120}, s.GoalSet())
	})

	t.Run("Invalid File", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, settings.FileName)
		require.NoError(t, os.WriteFile(path, []byte("goals:\n  happiness: 10\n"), 0644))

		s, err := settings.Load(path)
		assert.Error(t, err)
		assert.Equal(t, settings.Default(), s)
	})

	t.Run("Save Round Trip", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), settings.FileName)
		want := settings.Default()
		want.Nutrients = "food/*"
		want.Goals = map[string]float64{"fat": 70}
		want.GoalsNote = "goals"
		want.Display = settings.DisplayDocument

		require.NoError(t, want.Save(path))
		got, err := settings.Load(path)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*settings.Settings)
	}{
		{"Empty Tag", func(s *settings.Settings) { s.Tag = "" }},
		{"Tag With Space", func(s *settings.Settings) { s.Tag = "my food" }},
		{"Bad Pattern", func(s *settings.Settings) { s.Nutrients = "nutrients/[" }},
		{"Negative Goal", func(s *settings.Settings) { s.Goals = map[string]float64{"energy": -1} }},
		{"Unknown Display", func(s *settings.Settings) { s.Display = "popup" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := settings.Default()
			tc.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}

	assert.NoError(t, settings.Default().Validate())
}

func TestMatchesNutrient(t *testing.T) {
	s := settings.Default()
	assert.True(t, s.MatchesNutrient("nutrients/apple"))
	assert.True(t, s.MatchesNutrient("nutrients/fruit/apple"))
	assert.False(t, s.MatchesNutrient("journal/2024-01-01"))
}

func TestStore(t *testing.T) {
	st := settings.NewStore(settings.Default())

	var calls []string
	unsubA := st.Subscribe(func(s settings.Settings) { calls = append(calls, "a:"+s.Tag) })
	st.Subscribe(func(s settings.Settings) { calls = append(calls, "b:"+s.Tag) })

	require.NoError(t, st.Update(func(s *settings.Settings) { s.Tag = "meal" }))
	assert.Equal(t, []string{"a:meal", "b:meal"}, calls)
	assert.Equal(t, "meal", st.Get().Tag)

	unsubA()
	unsubA()
	require.NoError(t, st.Update(func(s *settings.Settings) { s.Tag = "snack" }))
	assert.Equal(t, []string{"a:meal", "b:meal", "b:snack"}, calls)

	t.Run("Rejects Invalid", func(t *testing.T) {
		err := st.Update(func(s *settings.Settings) { s.Tag = "" })
		assert.Error(t, err)
		assert.Equal(t, "snack", st.Get().Tag)
		assert.Len(t, calls, 3)
	})

	t.Run("Get Returns A Copy", func(t *testing.T) {
		require.NoError(t, st.Update(func(s *settings.Settings) { s.Goals = map[string]float64{"fat": 50} }))
		got := st.Get()
		got.Goals["fat"] = 1
		assert.Equal(t, 50.0, st.Get().Goals["fat"])
	})
}
