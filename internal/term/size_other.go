// Copyright ©2023 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

//go:build !linux && !darwin

package term

import "errors"

// Size returns the size of the terminal attached to fd in characters.
func Size(fd int) (cols, lines int, err error) {
	return 0, 0, errors.New("terminal size not available")
}
