package client

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPage_FlatShape(t *testing.T) {
	data := `{"content":[{"id":"a","name":"Slime"}],"number":1,"size":12,"totalElements":13,"totalPages":2}`

	var page Page[SpriteSummary]
	require.NoError(t, json.Unmarshal([]byte(data), &page))

	require.Len(t, page.Content, 1)
	assert.Equal(t, "Slime", page.Content[0].Name)
	assert.Equal(t, 1, page.Number)
	assert.Equal(t, int64(13), page.TotalElements)
	assert.False(t, page.HasNext())
	assert.True(t, page.HasPrev())
}

func TestPage_NestedShape(t *testing.T) {
	data := `{"content":[],"page":{"number":0,"size":20,"totalElements":41,"totalPages":3}}`

	var page Page[SpriteSummary]
	require.NoError(t, json.Unmarshal([]byte(data), &page))

	assert.NotNil(t, page.Content)
	assert.Empty(t, page.Content)
	assert.Equal(t, 20, page.Size)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext())
	assert.False(t, page.HasPrev())
}

func TestPage_Clamp(t *testing.T) {
	page := Page[User]{TotalPages: 3}
	assert.Equal(t, 0, page.Clamp(-4))
	assert.Equal(t, 1, page.Clamp(1))
	assert.Equal(t, 2, page.Clamp(9))

	empty := Page[User]{}
	assert.Equal(t, 0, empty.Clamp(5))
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  time.Time
	}{
		{
			name:  "local date-time with micros",
			input: "2024-05-01T10:20:30.123456",
			want:  time.Date(2024, 5, 1, 10, 20, 30, 123456000, time.Local),
		},
		{
			name:  "local date-time",
			input: "2024-05-01T10:20:30",
			want:  time.Date(2024, 5, 1, 10, 20, 30, 0, time.Local),
		},
		{
			name:  "rfc3339",
			input: "2024-05-01T10:20:30Z",
			want:  time.Date(2024, 5, 1, 10, 20, 30, 0, time.UTC),
		},
		{
			name:  "date only",
			input: "2024-05-01",
			want:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.Local),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got.Time), "got %s want %s", got.Time, tt.want)
		})
	}

	_, err := ParseTimestamp("yesterday")
	assert.Error(t, err)
}

func TestTimestamp_NullAndEmpty(t *testing.T) {
	var summary SpriteSummary
	require.NoError(t, json.Unmarshal([]byte(`{"createdAt":null,"deletedAt":null}`), &summary))
	assert.True(t, summary.CreatedAt.IsZero())
	assert.Nil(t, summary.DeletedAt)

	var user User
	require.NoError(t, json.Unmarshal([]byte(`{"createdAt":""}`), &user))
	assert.True(t, user.CreatedAt.IsZero())

	out, err := json.Marshal(Timestamp{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(out))
}

func TestUser_IsAdmin(t *testing.T) {
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Role: RoleUser}).IsAdmin())
}
