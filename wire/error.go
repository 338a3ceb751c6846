// Copyright 2026 Blink Labs Software
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

package wire

import "errors"

// ErrIncomplete is returned by Decoder.Next when the buffered data does not yet
// hold a whole envelope. It is a suspension condition, not a failure
var ErrIncomplete = errors.New("incomplete envelope")

var (
	ErrChecksumMismatch = errors.New("payload checksum mismatch")
	ErrInvalidMagic     = errors.New("invalid network magic")
	ErrPayloadTooLarge  = errors.New("payload length exceeds maximum")
	ErrInvalidCommand   = errors.New("invalid command name")
	ErrCommandTooLong   = errors.New("command name too long")
)
