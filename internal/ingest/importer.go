package ingest

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/phillip-england/leavedesk/internal/apiclient"
)

const ImportPath = "/api/v1/leave_requests/import"

// Upload is the file exactly as the user selected it.
type Upload struct {
	FileName string
	Data     []byte
}

type Importer struct {
	client *apiclient.Client
}

func NewImporter(client *apiclient.Client) *Importer {
	return &Importer{client: client}
}

// Submit posts the raw upload, never the preview, as multipart field "file".
func (i *Importer) Submit(ctx context.Context, up Upload) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", up.FileName)
	if err != nil {
		return fmt.Errorf("build import form: %w", err)
	}
	if _, err := part.Write(up.Data); err != nil {
		return fmt.Errorf("build import form: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("build import form: %w", err)
	}

	_, err = i.client.Send(ctx, apiclient.Request{
		Method:      http.MethodPost,
		Path:        ImportPath,
		Body:        &body,
		ContentType: writer.FormDataContentType(),
	})
	return err
}
