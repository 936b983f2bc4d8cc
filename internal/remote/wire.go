package remote

import (
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/danielpatrickdp/viewspace/internal/viewspace"
)

// #region messages
// Request body: {"max_groups": 10, "candidates": [{"index": 0, "dimensions": [...], ...}]}
type clusterRequest struct {
	MaxGroups  int                   `json:"max_groups"`
	Candidates []viewspace.ViewSpace `json:"candidates"`
}

// Response body: {"groups": [{"representative": 0, "members": [0, 1]}]}
type clusterResponse struct {
	Groups []viewspace.GroupRef `json:"groups"`
}

// #endregion messages

// #region encode-decode
// EncodeRequest builds the request message for a clustering call.
func EncodeRequest(candidates []viewspace.ViewSpace, maxGroups int) (*structpb.Struct, error) {
	return toStruct(clusterRequest{MaxGroups: maxGroups, Candidates: candidates})
}

// DecodeRequest reads a request message.
func DecodeRequest(in *structpb.Struct) ([]viewspace.ViewSpace, int, error) {
	var req clusterRequest
	if err := fromStruct(in, &req); err != nil {
		return nil, 0, fmt.Errorf("decode request: %w", err)
	}
	return req.Candidates, req.MaxGroups, nil
}

// EncodeResponse builds the response message from index-only groups.
func EncodeResponse(groups []viewspace.GroupRef) (*structpb.Struct, error) {
	if groups == nil {
		groups = []viewspace.GroupRef{}
	}
	return toStruct(clusterResponse{Groups: groups})
}

// DecodeResponse reads a response message. Fractional indices are rejected.
func DecodeResponse(out *structpb.Struct) ([]viewspace.GroupRef, error) {
	var resp clusterResponse
	if err := fromStruct(out, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return resp.Groups, nil
}

func toStruct(v any) (*structpb.Struct, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal: %w", err)
	}
	s := &structpb.Struct{}
	if err := protojson.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("to struct: %w", err)
	}
	return s, nil
}

func fromStruct(s *structpb.Struct, v any) error {
	if s == nil {
		return errors.New("empty message")
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return fmt.Errorf("from struct: %w", err)
	}
	return json.Unmarshal(raw, v)
}

// #endregion encode-decode
