package vectorstore

import (
	"github.com/qdrant/go-client/qdrant"

	"github.com/fyrsmithlabs/docsearchd/internal/chunker"
)

// Payload field keys. org_id, file_id and status carry payload indexes
// because every query filters on them.
const (
	fieldChunkID          = "chunk_id"
	fieldFileID           = "file_id"
	fieldPageNumber       = "page_number"
	fieldChunkIndex       = "chunk_index"
	fieldContent          = "content"
	fieldContentType      = "content_type"
	fieldWordCount        = "word_count"
	fieldCharCount        = "char_count"
	fieldSentenceCount    = "sentence_count"
	fieldHasTables        = "has_tables"
	fieldHasImages        = "has_images"
	fieldHasCode          = "has_code"
	fieldHeadings         = "headings"
	fieldKeywords         = "keywords"
	fieldStatus           = "status"
	fieldOrgID            = "org_id"
	fieldDocURL           = "doc_url"
	fieldOriginalFilename = "original_filename"
)

func stringValue(s string) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: s}}
}

func intValue(i int64) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: i}}
}

func boolValue(b bool) *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: b}}
}

func stringListValue(items []string) *qdrant.Value {
	values := make([]*qdrant.Value, len(items))
	for i, item := range items {
		values[i] = stringValue(item)
	}
	return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: values}}}
}

// chunkPayload serializes a chunk into a Qdrant payload.
func chunkPayload(c chunker.Chunk) map[string]*qdrant.Value {
	payload := map[string]*qdrant.Value{
		fieldChunkID:       stringValue(c.ChunkID),
		fieldFileID:        stringValue(c.FileID),
		fieldPageNumber:    intValue(int64(c.PageNumber)),
		fieldChunkIndex:    intValue(int64(c.ChunkIndex)),
		fieldContent:       stringValue(c.Content),
		fieldContentType:   stringValue(string(c.ContentType)),
		fieldWordCount:     intValue(int64(c.WordCount)),
		fieldCharCount:     intValue(int64(c.CharCount)),
		fieldSentenceCount: intValue(int64(c.SentenceCount)),
		fieldHasTables:     boolValue(c.HasTables),
		fieldHasImages:     boolValue(c.HasImages),
		fieldHasCode:       boolValue(c.HasCode),
		fieldStatus:        stringValue(string(c.Status)),
		fieldOrgID:         intValue(c.OrgID),
	}
	if len(c.Headings) > 0 {
		payload[fieldHeadings] = stringListValue(c.Headings)
	}
	if len(c.Keywords) > 0 {
		payload[fieldKeywords] = stringListValue(c.Keywords)
	}
	if c.DocURL != "" {
		payload[fieldDocURL] = stringValue(c.DocURL)
	}
	if c.OriginalFilename != "" {
		payload[fieldOriginalFilename] = stringValue(c.OriginalFilename)
	}
	return payload
}

func payloadString(payload map[string]*qdrant.Value, key string) string {
	if v, ok := payload[key]; ok {
		return v.GetStringValue()
	}
	return ""
}

func payloadInt(payload map[string]*qdrant.Value, key string) int64 {
	if v, ok := payload[key]; ok {
		return v.GetIntegerValue()
	}
	return 0
}

func payloadBool(payload map[string]*qdrant.Value, key string) bool {
	if v, ok := payload[key]; ok {
		return v.GetBoolValue()
	}
	return false
}

func payloadStringList(payload map[string]*qdrant.Value, key string) []string {
	v, ok := payload[key]
	if !ok {
		return nil
	}
	list := v.GetListValue()
	if list == nil {
		return nil
	}
	out := make([]string, 0, len(list.Values))
	for _, item := range list.Values {
		if s := item.GetStringValue(); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// chunkFromPayload reconstructs a chunk from a Qdrant payload.
func chunkFromPayload(payload map[string]*qdrant.Value) chunker.Chunk {
	return chunker.Chunk{
		ChunkID:          payloadString(payload, fieldChunkID),
		FileID:           payloadString(payload, fieldFileID),
		PageNumber:       int(payloadInt(payload, fieldPageNumber)),
		ChunkIndex:       int(payloadInt(payload, fieldChunkIndex)),
		Content:          payloadString(payload, fieldContent),
		ContentType:      chunker.ContentType(payloadString(payload, fieldContentType)),
		WordCount:        int(payloadInt(payload, fieldWordCount)),
		CharCount:        int(payloadInt(payload, fieldCharCount)),
		SentenceCount:    int(payloadInt(payload, fieldSentenceCount)),
		HasTables:        payloadBool(payload, fieldHasTables),
		HasImages:        payloadBool(payload, fieldHasImages),
		HasCode:          payloadBool(payload, fieldHasCode),
		Headings:         payloadStringList(payload, fieldHeadings),
		Keywords:         payloadStringList(payload, fieldKeywords),
		Status:           chunker.Status(payloadString(payload, fieldStatus)),
		OrgID:            payloadInt(payload, fieldOrgID),
		DocURL:           payloadString(payload, fieldDocURL),
		OriginalFilename: payloadString(payload, fieldOriginalFilename),
	}
}
