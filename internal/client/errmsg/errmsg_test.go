package errmsg

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrijs2005/familyorganizer/internal/client/api"
	"github.com/dmitrijs2005/familyorganizer/internal/client/models"
	"github.com/dmitrijs2005/familyorganizer/internal/client/validation"
)

func httpErr(status int, msg string) error {
	e := &api.Error{Kind: api.KindHTTP, Status: status, Method: "GET", Path: "/x"}
	if msg != "" {
		e.Body = &models.ErrorBody{Status: status, Message: msg}
	}
	return e
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"network", &api.Error{Kind: api.KindNetwork, Err: errors.New("dial tcp: refused")}, NoConnection},
		{"401", httpErr(401, ""), Unauthorized},
		{"403", httpErr(403, ""), Forbidden},
		{"404", httpErr(404, ""), NotFound},
		{"500", httpErr(500, ""), ServerFault},
		{"503", httpErr(503, ""), ServerFault},
		{"server message wins over 400", httpErr(400, "Title must not be blank"), "Title must not be blank"},
		{"server message wins over 403", httpErr(403, "Only the owner may edit"), "Only the owner may edit"},
		{"wrapped", fmt.Errorf("load recipes: %w", httpErr(404, "")), NotFound},
		{"timeout", fmt.Errorf("get: %w", context.DeadlineExceeded), TimedOut},
		{"other", errors.New("boom"), "boom"},
		{
			"validation",
			validation.Errors{{Field: "title", Message: "is required"}, {Field: "tags[0]", Message: "unknown tag X"}},
			"invalid input: title: is required; tags[0]: unknown tag X",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.err))
		})
	}
}
