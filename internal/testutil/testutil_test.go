package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v3"
)

func TestFakeContext_ServesHandlers(t *testing.T) {
	answer := &tele.PollAnswer{PollID: "p1", Options: []int{2}}
	fake := &FakeContext{User: &tele.User{ID: 7}, PollAns: answer}

	var c tele.Context = fake

	assert.Equal(t, int64(7), c.Sender().ID)
	assert.Same(t, answer, c.PollAnswer())
	assert.NoError(t, c.Respond())
	assert.NoError(t, c.Send("hi"))
	assert.Equal(t, 1, fake.Responds)
	assert.Equal(t, []interface{}{"hi"}, fake.Sent)
}
