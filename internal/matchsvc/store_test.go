package matchsvc

import (
	"context"
	"strings"
	"testing"

	"roll-for-your-life/internal/match"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreRecordWinner(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultRoster())
	roster, err := store.Roster(ctx)
	require.NoError(t, err)

	m, err := store.CreateMatch(ctx, 20, roster)
	require.NoError(t, err)
	assert.NotEmpty(t, m.ID)
	assert.False(t, m.Decided())

	decided, err := store.RecordWinner(ctx, m.ID, match.NewID("2"))
	require.NoError(t, err)
	assert.Equal(t, match.NewID("2"), decided.WinnerID)
	assert.False(t, decided.DecidedAt.IsZero())

	again, err := store.RecordWinner(ctx, m.ID, match.NewID("2"))
	require.NoError(t, err)
	assert.Equal(t, decided.DecidedAt, again.DecidedAt)

	conflict, err := store.RecordWinner(ctx, m.ID, match.NewID("1"))
	require.ErrorIs(t, err, ErrAlreadyDecided)
	assert.Equal(t, match.NewID("2"), conflict.WinnerID)
}

func TestMemoryStoreRecordWinnerErrors(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultRoster())
	m, err := store.CreateMatch(ctx, 20, DefaultRoster())
	require.NoError(t, err)

	_, err = store.RecordWinner(ctx, match.NewID("missing"), match.NewID("1"))
	assert.ErrorIs(t, err, ErrMatchNotFound)

	_, err = store.RecordWinner(ctx, m.ID, match.NewID("99"))
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	_, err = store.CreateMatch(ctx, 20, nil)
	assert.ErrorIs(t, err, ErrEmptyRoster)
}

func TestMemoryStoreCopies(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultRoster())
	m, err := store.CreateMatch(ctx, 20, DefaultRoster())
	require.NoError(t, err)

	m.Players[0].Name = "changed"
	got, err := store.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.Players[0].Name)
}

func TestReadRoster(t *testing.T) {
	input := strings.Join([]string{
		"id,name,image_url",
		"1, Ada ,https://img/ada.png",
		",missing id,https://img/x.png",
		"2,Grace",
		"3,Linus,",
		"4,,https://img/none.png",
		"5,Alan,https://img/alan.png",
	}, "\n")

	roster, err := ReadRoster(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []match.PlayerInfo{
		{ID: match.NewID("1"), Name: "Ada", AvatarURL: "https://img/ada.png"},
		{ID: match.NewID("5"), Name: "Alan", AvatarURL: "https://img/alan.png"},
	}, roster)
}

func TestReadRosterDuplicate(t *testing.T) {
	_, err := ReadRoster(strings.NewReader("id,name,image_url\n1,Ada,a.png\n1,Grace,g.png\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate player id")
}

func TestMemoryStoreMatchesIDsByText(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(DefaultRoster())
	m, err := store.CreateMatch(ctx, 20, DefaultRoster())
	require.NoError(t, err)

	decided, err := store.RecordWinner(ctx, m.ID, match.NumericID("2"))
	require.NoError(t, err)
	assert.Equal(t, match.NewID("2"), decided.WinnerID)

	_, err = store.RecordWinner(ctx, m.ID, match.NewID("2"))
	assert.NoError(t, err)
}
