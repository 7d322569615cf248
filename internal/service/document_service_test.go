package service

import (
	"context"
	"testing"

	"docinsight-be/internal/dto"
	"docinsight-be/internal/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fakeDocumentRepo) Update(_ context.Context, document *entity.Document) error {
	f.document = document
	return nil
}

type recordingQueue struct {
	payloads [][]byte
}

func (r *recordingQueue) Publish(_ context.Context, payload []byte) error {
	r.payloads = append(r.payloads, payload)
	return nil
}

func newTestDocumentService(doc *entity.Document) (IDocumentService, *fakeUow, *recordingQueue) {
	uow := &fakeUow{
		docs:   &fakeDocumentRepo{document: doc},
		chunks: &fakeChunkRepo{},
	}
	queue := &recordingQueue{}
	svc := NewDocumentService(&fakeUowFactory{uow: uow}, queue, noopLogger{})
	return svc, uow, queue
}

func TestSniffFileType(t *testing.T) {
	assert.Equal(t, "pdf", sniffFileType("report.txt", "pdf")) // declared wins
	assert.Equal(t, "markdown", sniffFileType("notes.md", ""))
	assert.Equal(t, "markdown", sniffFileType("notes.markdown", ""))
	assert.Equal(t, "text", sniffFileType("plain.txt", ""))
	assert.Equal(t, "text", sniffFileType("noextension", ""))
	assert.Equal(t, "csv", sniffFileType("data.csv", ""))
}

func TestUpdateTitleOnlyDoesNotRequeue(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		Title:   "Old title",
		Content: "Unchanged body.",
		Status:  entity.DocumentStatusCompleted,
	}
	svc, uow, queue := newTestDocumentService(doc)

	newTitle := "New title"
	res, err := svc.Update(context.Background(), doc.Id, &dto.UpdateDocumentRequest{Title: &newTitle})
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.False(t, res.Reingested)
	assert.Equal(t, entity.DocumentStatusCompleted, res.Status)
	assert.Equal(t, "New title", uow.docs.document.Title)
	assert.Empty(t, queue.payloads)
}

func TestUpdateSameContentDoesNotRequeue(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		Title:   "Report",
		Content: "Same body.",
		Status:  entity.DocumentStatusCompleted,
	}
	svc, _, queue := newTestDocumentService(doc)

	same := "Same body."
	res, err := svc.Update(context.Background(), doc.Id, &dto.UpdateDocumentRequest{Content: &same})
	require.NoError(t, err)

	assert.False(t, res.Reingested)
	assert.Empty(t, queue.payloads)
}

func TestUpdateChangedContentRequeues(t *testing.T) {
	doc := &entity.Document{
		Id:      uuid.New(),
		Title:   "Report",
		Content: "Old body.",
		Status:  entity.DocumentStatusCompleted,
	}
	svc, uow, queue := newTestDocumentService(doc)

	changed := "New body."
	res, err := svc.Update(context.Background(), doc.Id, &dto.UpdateDocumentRequest{Content: &changed})
	require.NoError(t, err)

	assert.True(t, res.Reingested)
	assert.Equal(t, entity.DocumentStatusPending, res.Status)
	assert.Equal(t, "New body.", uow.docs.document.Content)
	require.Len(t, queue.payloads, 1)
}

func TestUpdateMissingDocument(t *testing.T) {
	svc, _, queue := newTestDocumentService(nil)

	title := "whatever"
	res, err := svc.Update(context.Background(), uuid.New(), &dto.UpdateDocumentRequest{Title: &title})
	require.NoError(t, err)
	assert.Nil(t, res)
	assert.Empty(t, queue.payloads)
}
