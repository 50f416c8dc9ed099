package server

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/paper-summarizer/internal/async"
	"github.com/joseph-ayodele/paper-summarizer/internal/entity"
	"github.com/joseph-ayodele/paper-summarizer/internal/pipeline"
)

// batchRequest is the decoded form of a RunBatch/SubmitBatch payload:
//
//	{"model": "...", "page_limit": 2, "documents": [{"filename": "a.pdf", "content_base64": "..."}]}
type batchRequest struct {
	Model     string
	PageLimit int
	Documents []entity.Document
}

func parseBatchRequest(req *structpb.Struct) (batchRequest, error) {
	fields := req.GetFields()
	out := batchRequest{
		Model:     strings.TrimSpace(fields["model"].GetStringValue()),
		PageLimit: int(fields["page_limit"].GetNumberValue()),
	}
	for i, v := range fields["documents"].GetListValue().GetValues() {
		doc := v.GetStructValue()
		if doc == nil {
			return batchRequest{}, fmt.Errorf("documents[%d] must be an object", i)
		}
		name := strings.TrimSpace(doc.GetFields()["filename"].GetStringValue())
		content, err := base64.StdEncoding.DecodeString(doc.GetFields()["content_base64"].GetStringValue())
		if err != nil {
			return batchRequest{}, fmt.Errorf("documents[%d].content_base64: %w", i, err)
		}
		out.Documents = append(out.Documents, entity.Document{Filename: name, Content: content})
	}
	return out, nil
}

func ts(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func recordMap(r entity.MetadataRecord) map[string]any {
	return map[string]any{
		"id":           r.ID.String(),
		"batch_id":     r.BatchID.String(),
		"doi_issn":     r.DOIISSN,
		"title":        r.Title,
		"authors":      r.Authors,
		"summary":      r.Summary,
		"model":        r.Model,
		"processed_at": ts(r.ProcessedAt),
	}
}

func outcomesList(outs []pipeline.Outcome) []any {
	list := make([]any, 0, len(outs))
	for _, o := range outs {
		list = append(list, map[string]any{
			"document_id": o.DocumentID.String(),
			"filename":    o.Filename,
			"status":      string(o.Status),
			"kind":        o.Kind,
			"error":       o.Error,
			"elapsed_ms":  o.Elapsed.Milliseconds(),
		})
	}
	return list
}

func batchResultStruct(res *pipeline.BatchResult) (*structpb.Struct, error) {
	records := make([]any, 0, len(res.Records))
	for _, r := range res.Records {
		records = append(records, recordMap(r))
	}
	return structpb.NewStruct(map[string]any{
		"batch_id":        res.BatchID.String(),
		"status":          string(res.Status),
		"records":         records,
		"outcomes":        outcomesList(res.Outcomes),
		"artifact_stored": res.ArtifactStored,
		"export_size":     len(res.Export),
		"elapsed_ms":      res.Elapsed.Milliseconds(),
	})
}

func batchStateStruct(st async.State) (*structpb.Struct, error) {
	return structpb.NewStruct(map[string]any{
		"batch_id":     st.BatchID.String(),
		"status":       string(st.Status),
		"documents":    st.Documents,
		"done":         st.Done,
		"records":      st.Records,
		"outcomes":     outcomesList(st.Outcomes),
		"error":        st.Error,
		"submitted_at": ts(st.SubmittedAt),
		"started_at":   ts(st.StartedAt),
		"finished_at":  ts(st.FinishedAt),
	})
}

func uploadsStruct(ups []entity.UploadSummary) (*structpb.Struct, error) {
	list := make([]any, 0, len(ups))
	for _, u := range ups {
		list = append(list, map[string]any{
			"id":          u.ID.String(),
			"filename":    u.Filename,
			"uploaded_at": ts(u.UploadedAt),
			"model":       u.Model,
			"size":        u.Size,
		})
	}
	return structpb.NewStruct(map[string]any{"uploads": list})
}
