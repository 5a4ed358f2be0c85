package handler

import (
	"errors"
	"testing"

	"wordtrainer/internal/testutil"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"
)

func TestCleanCallbackData(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "normal string",
			input:    "test_data",
			expected: "test_data",
		},
		{
			name:     "string with whitespace",
			input:    "  test_data  ",
			expected: "test_data",
		},
		{
			name:     "string with newline",
			input:    "test\ndata",
			expected: "testdata",
		},
		{
			name:     "string with tab",
			input:    "test\tdata",
			expected: "testdata",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "only whitespace",
			input:    "   ",
			expected: "",
		},
		{
			name:     "string with unprintable characters",
			input:    "test\x00data\x01",
			expected: "testdata",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := cleanCallbackData(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHandler_CallbackRoute(t *testing.T) {
	h := &Handler{logger: testutil.NewTestLogger()}

	for _, data := range []string{"daily_training", "retry_training", "review_training", "show_stats", "stop_training", "show_menu", "next_word", "loading"} {
		assert.NotNil(t, h.callbackRoute(data), data)
	}
	assert.Nil(t, h.callbackRoute("page_2"))
	assert.Nil(t, h.callbackRoute(""))
}

func TestHandler_HandleCallback_Unknown(t *testing.T) {
	h := &Handler{logger: testutil.NewTestLogger()}
	ctx := &testutil.FakeContext{
		User: &tele.User{ID: 1},
		Cb:   &tele.Callback{ID: "cb", Data: "something_else\n"},
	}

	err := h.handleCallback(ctx)

	assert.NoError(t, err)
	assert.Equal(t, 1, ctx.Responds)
	assert.Empty(t, ctx.Sent)
}

func TestHandler_HandleEditError(t *testing.T) {
	h := &Handler{logger: testutil.NewTestLogger()}

	t.Run("not modified is swallowed", func(t *testing.T) {
		ctx := &testutil.FakeContext{Cb: &tele.Callback{ID: "cb"}}

		err := h.handleEditError(errors.New("telegram: message is not modified (400)"), ctx, 1)

		assert.NoError(t, err)
		assert.Equal(t, 1, ctx.Responds)
	})

	t.Run("other errors are returned", func(t *testing.T) {
		ctx := &testutil.FakeContext{Cb: &tele.Callback{ID: "cb"}}

		err := h.handleEditError(errors.New("message to edit not found"), ctx, 1)

		assert.Error(t, err)
		assert.Equal(t, 1, ctx.Responds)
	})
}

func TestHandler_HandleMenu_EditFallsBackToSend(t *testing.T) {
	h := &Handler{logger: testutil.NewTestLogger()}
	ctx := &testutil.FakeContext{
		User:    &tele.User{ID: 1},
		Cb:      &tele.Callback{ID: "cb"},
		EditErr: errors.New("message can't be edited"),
	}

	err := h.handleMenu(ctx)

	assert.NoError(t, err)
	assert.Equal(t, []interface{}{menuText}, ctx.Sent)
}
