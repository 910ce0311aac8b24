package validate_test

import (
	"testing"

	"github.com/ardanlabs/anchorchain/business/sys/validate"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Check(t *testing.T) {
	type anchorRequest struct {
		Payload string `json:"payload" validate:"required"`
	}

	t.Log("Given the need to validate request values.")
	{
		if err := validate.Check(anchorRequest{Payload: "hello"}); err != nil {
			t.Fatalf("\t%s\tShould accept a request with a payload: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a request with a payload.", success)

		err := validate.Check(anchorRequest{})
		if !validate.IsFieldErrors(err) {
			t.Fatalf("\t%s\tShould get field errors for a missing payload: %v", failed, err)
		}
		t.Logf("\t%s\tShould get field errors for a missing payload.", success)

		fields := validate.GetFieldErrors(err).Fields()
		if _, exists := fields["payload"]; !exists {
			t.Logf("\t%s\tgot: %v", failed, fields)
			t.Fatalf("\t%s\tShould name the field by its json tag.", failed)
		}
		t.Logf("\t%s\tShould name the field by its json tag.", success)
	}
}
