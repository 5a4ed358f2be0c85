package jsonfile

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"wordtrainer/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepo_LoadMissingFileCreatesEmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "storage", "users.json")
	repo := NewUserRepo(path)

	users, err := repo.Load()

	assert.NoError(t, err)
	assert.Empty(t, users)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestUserRepo_LoadEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("  \n"), 0o644))

	users, err := NewUserRepo(path).Load()

	assert.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserRepo_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	users, err := NewUserRepo(path).Load()

	assert.Error(t, err)
	assert.Nil(t, users)
}

func TestUserRepo_LoadBackfillsLegacyRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	legacy := `{"111222333": {"currentDay": 2, "mistakes": [], "wordsLearned": ["pan"]}}`
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	users, err := NewUserRepo(path).Load()

	require.NoError(t, err)
	u := users[111222333]
	require.NotNil(t, u)
	assert.Equal(t, domain.DayLabel{Seq: 2}, u.CurrentDay)
	assert.Equal(t, []string{}, u.TrainingDays)
	assert.Equal(t, []string{"pan"}, u.WordsLearned)
	assert.Equal(t, domain.Stats{}, u.Stats)
	assert.Nil(t, u.Session)
}

func TestUserRepo_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	doc := `{
		"136488396": {
			"currentDay": "2025-03-02",
			"trainingDays": ["2025-03-02"],
			"mistakes": ["gato"],
			"wordsLearned": ["gato", "pan"],
			"active": true,
			"lastTrainedAt": "2025-03-02",
			"stats": {"correct": 3, "incorrect": 1},
			"session": {"wordList": [{"word": "pan", "translation": "לחם", "example": "Bread.", "hasQuiz": false}], "currentIndex": 1},
			"sessionType": "review"
		}
	}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))
	repo := NewUserRepo(path)

	users, err := repo.Load()
	require.NoError(t, err)
	require.NoError(t, repo.Save(users))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, doc, string(data))
}

func TestUserRepo_SaveNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")
	repo := NewUserRepo(path)

	require.NoError(t, repo.Save(nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var doc map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Empty(t, doc)
}
