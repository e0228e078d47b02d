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

package xlsxmeta

import (
	"errors"
	"fmt"
)

var errXlsxmeta = errors.New("xlsxmeta")

// ErrSheetNotFound indicates the requested sheet name could not be
// resolved to a worksheet part.
var ErrSheetNotFound = fmt.Errorf("%w: sheet not found", errXlsxmeta)

// ErrXMLFormat indicates malformed XML in a metadata part.
var ErrXMLFormat = fmt.Errorf("%w: malformed xml", errXlsxmeta)
