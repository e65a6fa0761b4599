package ev

import (
	"errors"
	"fmt"
)

// ErrDataUnavailable indicates a required dataset or rule store could not be
// obtained at load time. No computation is possible past this error.
var ErrDataUnavailable = errors.New("ev: data unavailable")

// MalformedRuleError reports a rule or mapping store whose contents do not
// validate. It is fatal at load time.
type MalformedRuleError struct {
	Store  string // which store ("collation rules", "expansion mappings", ...)
	Key    string // offending entry, if known
	Reason string
}

// Error implements the error interface for MalformedRuleError.
func (e *MalformedRuleError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("malformed %s: %s: %s", e.Store, e.Key, e.Reason)
	}
	return fmt.Sprintf("malformed %s: %s", e.Store, e.Reason)
}

// IsMalformedRule returns true if the error is a MalformedRuleError.
func IsMalformedRule(err error) bool {
	var mre *MalformedRuleError
	return errors.As(err, &mre)
}
