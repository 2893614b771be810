package helper

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"todoapi/internal/core/model/request"

	. "github.com/onsi/gomega"
)

func decodeError(body string) error {
	var params request.TodoRequest

	return json.NewDecoder(strings.NewReader(body)).Decode(&params)
}

func TestDecodeErrorDetail(t *testing.T) {
	RegisterTestingT(t)

	cases := []struct {
		body, field, message string
	}{
		{`{"title":"x","done":"yes"}`, "done", "done must be a boolean"},
		{`{"title":42}`, "title", "title must be a string"},
		{`{"id":"seven","title":"x"}`, "id", "id must be an integer"},
		{`[1,2]`, "body", "Request body must be a JSON object"},
		{`{"title":`, "body", "Request body must be valid JSON"},
		{`{"title" "x"}`, "body", "Request body must be valid JSON"},
		{``, "body", "Request body is empty"},
	}

	for _, tc := range cases {
		err := decodeError(tc.body)
		Expect(err).To(HaveOccurred(), tc.body)

		field, message := DecodeErrorDetail(err)

		Expect(field).To(Equal(tc.field), tc.body)
		Expect(message).To(Equal(tc.message), tc.body)
		Expect(message).ToNot(ContainSubstring("Go struct field"))
		Expect(message).ToNot(ContainSubstring("TodoRequest"))
	}
}

func TestDecodeErrorDetail_UnknownError(t *testing.T) {
	RegisterTestingT(t)

	field, message := DecodeErrorDetail(errors.New("invalid request"))

	Expect(field).To(Equal("body"))
	Expect(message).To(Equal("Invalid request body"))
}
