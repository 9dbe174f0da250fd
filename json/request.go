package json

import (
	"encoding/json"
	"fmt"

	"github.com/fwojciec/sawchat"
)

type requestDTO struct {
	Prompt  string       `json:"prompt"`
	History []messageDTO `json:"history"`
}

type messageDTO struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// batchResponseDTO is the batch endpoint's reply. sql may be null.
type batchResponseDTO struct {
	Answer string    `json:"answer"`
	SQL    *string   `json:"sql"`
	Steps  []stepDTO `json:"steps"`
}

// MarshalRequest encodes the body shared by the streaming and batch
// endpoints. History is always an array, never null.
func MarshalRequest(req sawchat.Request) ([]byte, error) {
	dto := requestDTO{
		Prompt:  req.Prompt,
		History: make([]messageDTO, len(req.History)),
	}
	for i, msg := range req.History {
		dto.History[i] = messageDTO{Role: string(msg.Role), Content: msg.Content}
	}
	return json.Marshal(dto)
}

// UnmarshalRequest decodes a request body. Used by fakes of the agent service.
func UnmarshalRequest(data []byte) (sawchat.Request, error) {
	var dto requestDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return sawchat.Request{}, fmt.Errorf("unmarshal request: %w", err)
	}
	req := sawchat.Request{Prompt: dto.Prompt}
	for _, m := range dto.History {
		req.History = append(req.History, sawchat.Message{Role: sawchat.Role(m.Role), Content: m.Content})
	}
	return req, nil
}

// UnmarshalBatchResponse decodes the batch endpoint's reply.
func UnmarshalBatchResponse(data []byte) (sawchat.BatchResponse, error) {
	var dto batchResponseDTO
	if err := json.Unmarshal(data, &dto); err != nil {
		return sawchat.BatchResponse{}, fmt.Errorf("unmarshal batch response: %w", err)
	}
	resp := sawchat.BatchResponse{
		Answer: dto.Answer,
		SQL:    deref(dto.SQL),
		Steps:  make([]sawchat.StepInfo, len(dto.Steps)),
	}
	for i, s := range dto.Steps {
		resp.Steps[i] = unmarshalStep(s)
	}
	return resp, nil
}

// MarshalBatchResponse encodes a batch reply. Used by fakes of the agent service.
func MarshalBatchResponse(resp sawchat.BatchResponse) ([]byte, error) {
	dto := batchResponseDTO{
		Answer: resp.Answer,
		SQL:    nonEmpty(resp.SQL),
		Steps:  make([]stepDTO, len(resp.Steps)),
	}
	for i, s := range resp.Steps {
		dto.Steps[i] = marshalStep(s)
	}
	return json.Marshal(dto)
}
