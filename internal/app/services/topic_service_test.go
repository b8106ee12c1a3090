package services

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/websocket"
)

func TestCreateTopic(t *testing.T) {
	f := newFixture(t)

	_, err := f.topicService.CreateTopic(f.ctx, f.alice, dto.CreateTopicRequest{Subject: "Hello there"})
	assertAppError(t, err, apperrors.ErrValidationFailed, "Missing required field: message")

	_, err = f.topicService.CreateTopic(f.ctx, f.alice, dto.CreateTopicRequest{Subject: "Hi", Message: "A long enough message"})
	assertAppError(t, err, apperrors.ErrBadRequest, "Subject must be between 5 and 200 characters")

	_, err = f.topicService.CreateTopic(f.ctx, f.alice, dto.CreateTopicRequest{Subject: "Valid subject", Message: "short"})
	assertAppError(t, err, apperrors.ErrBadRequest, "Message must be at least 10 characters")

	_, err = f.topicService.CreateTopic(f.ctx, f.alice, dto.CreateTopicRequest{
		TopicID: strings.Repeat("k", KeyMaxLength+1), Subject: "Valid subject", Message: "A long enough message",
	})
	assertAppError(t, err, apperrors.ErrBadRequest, "")

	topic := f.createTopic(t, f.alice, "topic_week3")
	assert.Equal(t, "topic_week3", topic.TopicID)
	assert.Equal(t, f.alice.ID, topic.UserID)
	assert.Equal(t, "Alice", topic.AuthorName)

	_, err = f.topicService.CreateTopic(f.ctx, f.bob, dto.CreateTopicRequest{
		TopicID: "topic_week3", Subject: "Another subject", Message: "Another long message",
	})
	assertAppError(t, err, apperrors.ErrTopicKeyExists, "Topic id already exists")

	generated, err := f.topicService.CreateTopic(f.ctx, f.bob, dto.CreateTopicRequest{Subject: "Generated id", Message: "The server picks the id"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(generated.TopicID, "topic_"), generated.TopicID)
}

func TestUpdateAndDeleteTopic_Ownership(t *testing.T) {
	f := newFixture(t)
	f.createTopic(t, f.alice, "alice_topic")
	newSubject := "Updated subject"

	_, err := f.topicService.UpdateTopic(f.ctx, f.bob, "alice_topic", dto.UpdateTopicRequest{Subject: &newSubject})
	assertAppError(t, err, apperrors.ErrPermissionDenied, "")

	err = f.topicService.DeleteTopic(f.ctx, f.bob, "alice_topic")
	assertAppError(t, err, apperrors.ErrPermissionDenied, "")

	_, err = f.topicService.UpdateTopic(f.ctx, f.alice, "alice_topic", dto.UpdateTopicRequest{})
	assertAppError(t, err, apperrors.ErrBadRequest, "No fields to update")

	_, err = f.topicService.UpdateTopic(f.ctx, f.alice, "missing_topic", dto.UpdateTopicRequest{Subject: &newSubject})
	assertAppError(t, err, apperrors.ErrTopicNotFound, "Topic not found")

	updated, err := f.topicService.UpdateTopic(f.ctx, f.alice, "alice_topic", dto.UpdateTopicRequest{Subject: &newSubject})
	require.NoError(t, err)
	assert.Equal(t, newSubject, updated.Subject)
	assert.Equal(t, "How does the second exercise work?", updated.Message)

	adminSubject := "Moderated subject"
	updated, err = f.topicService.UpdateTopic(f.ctx, f.admin, "alice_topic", dto.UpdateTopicRequest{Subject: &adminSubject})
	require.NoError(t, err)
	assert.Equal(t, adminSubject, updated.Subject)
	assert.Equal(t, f.alice.ID, updated.UserID)

	require.NoError(t, f.topicService.DeleteTopic(f.ctx, f.admin, "alice_topic"))
	_, err = f.topicService.GetTopic(f.ctx, "alice_topic")
	assertAppError(t, err, apperrors.ErrTopicNotFound, "")
}

func TestReplies(t *testing.T) {
	f := newFixture(t)
	f.createTopic(t, f.alice, "t1")

	_, err := f.topicService.CreateReply(f.ctx, f.bob, "nope", dto.CreateCommentRequest{Text: "Where am I?"})
	assertAppError(t, err, apperrors.ErrTopicNotFound, "Parent topic not found")

	_, err = f.topicService.CreateReply(f.ctx, f.bob, "t1", dto.CreateCommentRequest{Text: " "})
	assertAppError(t, err, apperrors.ErrValidationFailed, "Missing required field: text")

	_, err = f.topicService.CreateReply(f.ctx, f.bob, "t1", dto.CreateCommentRequest{Text: "ok"})
	assertAppError(t, err, apperrors.ErrBadRequest, "Reply must be at least 3 characters")

	first, err := f.topicService.CreateReply(f.ctx, f.bob, "t1", dto.CreateCommentRequest{ReplyID: "r1", Text: "First reply"})
	require.NoError(t, err)
	assert.Equal(t, "r1", first.CommentID)
	assert.Equal(t, "Bob", first.AuthorName)

	_, err = f.topicService.CreateReply(f.ctx, f.alice, "t1", dto.CreateCommentRequest{ReplyID: "r1", Text: "Same id again"})
	assertAppError(t, err, apperrors.ErrReplyKeyExists, "Reply id already exists")

	_, err = f.topicService.CreateReply(f.ctx, f.alice, "t1", dto.CreateCommentRequest{ReplyID: "r2", Text: "Second reply"})
	require.NoError(t, err)

	replies, err := f.topicService.ListReplies(f.ctx, "t1")
	require.NoError(t, err)
	require.Len(t, replies, 2)
	assert.Equal(t, "r1", replies[0].CommentID)
	assert.Equal(t, "r2", replies[1].CommentID)

	topic, err := f.topicService.GetTopic(f.ctx, "t1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, topic.CommentCount)

	err = f.topicService.DeleteReply(f.ctx, f.alice, "r1")
	assertAppError(t, err, apperrors.ErrPermissionDenied, "")

	err = f.topicService.DeleteReply(f.ctx, f.alice, "missing")
	assertAppError(t, err, apperrors.ErrReplyNotFound, "Reply not found")

	require.NoError(t, f.topicService.DeleteReply(f.ctx, f.bob, "r1"))
	require.NoError(t, f.topicService.DeleteReply(f.ctx, f.admin, "r2"))

	replies, err = f.topicService.ListReplies(f.ctx, "t1")
	require.NoError(t, err)
	assert.Empty(t, replies)

	_, err = f.topicService.ListReplies(f.ctx, "")
	assertAppError(t, err, apperrors.ErrValidationFailed, "Missing required field: topic_id")
}

func TestDeleteTopic_CascadesReplies(t *testing.T) {
	f := newFixture(t)
	f.createTopic(t, f.alice, "t1")
	_, err := f.topicService.CreateReply(f.ctx, f.bob, "t1", dto.CreateCommentRequest{Text: "A reply"})
	require.NoError(t, err)

	require.NoError(t, f.topicService.DeleteTopic(f.ctx, f.alice, "t1"))
	assert.Zero(t, f.repos.TopicComments.Count())
}

func TestListTopics_SearchAndSort(t *testing.T) {
	f := newFixture(t)
	_, err := f.topicService.CreateTopic(f.ctx, f.alice, dto.CreateTopicRequest{TopicID: "a", Subject: "Alpha pointers", Message: "Questions about pointers"})
	require.NoError(t, err)
	_, err = f.topicService.CreateTopic(f.ctx, f.bob, dto.CreateTopicRequest{TopicID: "b", Subject: "Beta channels", Message: "Questions about channels"})
	require.NoError(t, err)

	all, err := f.topicService.ListTopics(f.ctx, nil)
	require.NoError(t, err)
	require.Len(t, all.Topics, 2)
	assert.Equal(t, "b", all.Topics[0].TopicID, "newest first by default")
	assert.EqualValues(t, 2, all.Pagination.TotalItems)

	bySubject, err := f.topicService.ListTopics(f.ctx, url.Values{"sort": {"subject"}, "order": {"asc"}})
	require.NoError(t, err)
	assert.Equal(t, "a", bySubject.Topics[0].TopicID)

	byAuthor, err := f.topicService.ListTopics(f.ctx, url.Values{"search": {"bob"}})
	require.NoError(t, err)
	require.Len(t, byAuthor.Topics, 1)
	assert.Equal(t, "b", byAuthor.Topics[0].TopicID)
}

func TestTopicEvents(t *testing.T) {
	f := newFixture(t)
	topic := f.createTopic(t, f.alice, "t1")

	_, err := f.topicService.CreateReply(f.ctx, f.bob, "t1", dto.CreateCommentRequest{ReplyID: "r1", Text: "First reply"})
	require.NoError(t, err)
	_, err = f.topicService.CreateReply(f.ctx, f.bob, "t1", dto.CreateCommentRequest{ReplyID: "r1", Text: "Duplicate"})
	require.Error(t, err)

	subject := "Renamed question"
	_, err = f.topicService.UpdateTopic(f.ctx, f.alice, "t1", dto.UpdateTopicRequest{Subject: &subject})
	require.NoError(t, err)
	require.NoError(t, f.topicService.DeleteReply(f.ctx, f.bob, "r1"))
	require.NoError(t, f.topicService.DeleteTopic(f.ctx, f.alice, "t1"))

	assert.Equal(t, []string{
		websocket.EventReplyCreated,
		websocket.EventTopicUpdated,
		websocket.EventReplyDeleted,
		websocket.EventTopicDeleted,
	}, f.events.types())
	for _, e := range f.events.events {
		assert.Equal(t, topic.ID, e.TopicID, e.Type)
	}

	reply, ok := f.events.events[0].Data.(*dto.CommentResponse)
	require.True(t, ok)
	assert.Equal(t, "r1", reply.CommentID)
	assert.Equal(t, map[string]string{"comment_id": "r1"}, f.events.events[2].Data)
}
