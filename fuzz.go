// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package bdat

// Fuzz is the entry point for fuzz testing harnesses targeting the
// decoders.
func Fuzz(data []byte) int {
	f, err := OpenBytes(data, &Options{})
	if err != nil {
		return 0
	}
	err = f.Parse()
	if err != nil {
		return 0
	}
	return 1
}
