package server

import (
	"encoding/json"
	"sort"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/mapping"
)

// toMap converts any JSON-encodable value into the generic shape structpb accepts.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out map[string]any
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	m, err := toMap(v)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	s, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return s, nil
}

func stringField(req *structpb.Struct, name string) string {
	return req.GetFields()[name].GetStringValue()
}

// recordFromRequest reads the "fields" object into a JobRecord. Every value must be a string
// and every key a known record-store field.
func recordFromRequest(req *structpb.Struct) (*mapping.JobRecord, error) {
	fields := req.GetFields()["fields"].GetStructValue()
	if fields == nil || len(fields.GetFields()) == 0 {
		return nil, common.InvalidArgumentError("fields is required")
	}
	names := make([]string, 0, len(fields.GetFields()))
	for k := range fields.GetFields() {
		names = append(names, k)
	}
	sort.Strings(names)

	rec := &mapping.JobRecord{}
	for _, name := range names {
		v, ok := fields.GetFields()[name].GetKind().(*structpb.Value_StringValue)
		if !ok {
			return nil, common.InvalidArgumentErrorf("field %q must be a string", name)
		}
		if err := rec.Set(name, v.StringValue); err != nil {
			return nil, common.InvalidArgumentError(err.Error())
		}
	}
	return rec, nil
}

type violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func violations(res mapping.Result) []violation {
	out := make([]violation, 0, len(res.Errors))
	for _, e := range res.Errors {
		out = append(out, violation{Field: e.Field, Message: e.Message})
	}
	return out
}
