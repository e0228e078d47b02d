// Copyright 2024 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package zipstream

import (
	"errors"
	"fmt"
)

// errZipstream is the base error for all zipstream errors.
var errZipstream = errors.New("zipstream")

// ErrFormat indicates a malformed local-file-header section: a bad
// signature, a truncated header, or an inflate failure.
var ErrFormat = fmt.Errorf("%w: malformed zip container", errZipstream)

// ErrUnsupportedCompression indicates a compression method other than
// store (0) or deflate (8).
var ErrUnsupportedCompression = fmt.Errorf("%w: unsupported compression method", errZipstream)

func formatErr(detail string, cause error) error {
	return fmt.Errorf("%w: %s: %w", ErrFormat, detail, cause)
}
