package patch

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type body struct {
	Title   Field[string]   `json:"title"`
	DueDate Field[string]   `json:"dueDate"`
	Tags    Field[[]string] `json:"tags"`
}

func TestField_States(t *testing.T) {
	var b body
	require.NoError(t, json.Unmarshal([]byte(`{"title":"X","dueDate":null}`), &b))

	assert.True(t, b.Title.Set)
	assert.False(t, b.Title.Null)
	assert.Equal(t, "X", *b.Title.Ptr())

	assert.True(t, b.DueDate.Set)
	assert.True(t, b.DueDate.Null)
	assert.Nil(t, b.DueDate.Ptr())

	assert.False(t, b.Tags.Set)
	assert.Nil(t, b.Tags.Ptr())
}

func TestField_EmptySlice(t *testing.T) {
	var b body
	require.NoError(t, json.Unmarshal([]byte(`{"tags":[]}`), &b))
	require.NotNil(t, b.Tags.Ptr())
	assert.Empty(t, *b.Tags.Ptr())
}

func TestField_TypeMismatch(t *testing.T) {
	var b body
	assert.Error(t, json.Unmarshal([]byte(`{"tags":"a"}`), &b))
}
