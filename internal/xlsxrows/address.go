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

package xlsxrows

// columnIndex converts the alphabetic prefix of a cell address ("A1",
// "AZ17", …) to a zero-based column index: A=0, Z=25, AA=26, AZ=51,
// BA=52, ZZ=701, AAA=702. Matching is case-insensitive and stops at the
// first non-letter byte.
func columnIndex(address string) int {
	idx := 0
	for i := 0; i < len(address); i++ {
		c := address[i]
		var upper byte
		switch {
		case c >= 'A' && c <= 'Z':
			upper = c
		case c >= 'a' && c <= 'z':
			upper = c - 'a' + 'A'
		default:
			return idx - 1
		}
		idx = idx*26 + int(upper-'A'+1)
	}
	return idx - 1
}
