// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package precondition marks failures that abort a run before anything in
// the destination is touched.
package precondition

import (
	"fmt"

	"gitlab.com/tozd/go/errors"
)

// ErrFailed is wrapped by every precondition failure
var ErrFailed = errors.Base("precondition failed")

// 🚫 Errorf builds a precondition failure with a formatted reason
func Errorf(format string, args ...any) error {
	return errors.WithStack(&failure{msg: fmt.Sprintf(format, args...)})
}

// Is reports whether err is, or wraps, a precondition failure
func Is(err error) bool {
	return errors.Is(err, ErrFailed)
}

type failure struct {
	msg string
}

func (f *failure) Error() string {
	return f.msg
}

func (f *failure) Unwrap() error {
	return ErrFailed
}
