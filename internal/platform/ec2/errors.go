package ec2

import (
	"errors"

	"github.com/aws/smithy-go"

	"github.com/imamik/fleetctl/internal/util/retry"
)

// isFatalCode reports EC2 error codes that no amount of retrying will fix.
func isFatalCode(code string) bool {
	switch code {
	case "InvalidAMIID.Malformed", "InvalidAMIID.NotFound", "InvalidAMIID.Unavailable",
		"InvalidKeyPair.NotFound", "InvalidParameterValue", "InvalidParameterCombination",
		"InvalidInstanceID.Malformed", "InvalidInstanceID.NotFound", "Unsupported",
		"UnauthorizedOperation", "AuthFailure", "InstanceLimitExceeded", "VcpuLimitExceeded":
		return true
	}
	return false
}

// classify marks permanent API errors as fatal so they are not retried.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if isFatalCode(errorCode(err)) {
		return retry.Fatal(err)
	}
	return err
}

func isInstanceNotFound(err error) bool {
	return errorCode(err) == "InvalidInstanceID.NotFound"
}

func errorCode(err error) string {
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		return apiErr.ErrorCode()
	}
	return ""
}
