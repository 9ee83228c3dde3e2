// Copyright 2025 EngFlow Inc. All rights reserved.
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

//go:build unix

package cppinclude

import (
	"strconv"

	"golang.org/x/sys/unix"
)

// fileIdentity is device+inode on POSIX, so hard-linked or bind-mounted
// paths that refer to the same physical file collapse to one cache entry.
type fileIdentity struct {
	dev uint64
	ino uint64
}

func statIdentity(path string) (fileIdentity, error) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return fileIdentity{}, err
	}
	return fileIdentity{dev: uint64(st.Dev), ino: st.Ino}, nil
}

func identityKey(id fileIdentity) string {
	return "unix:" + strconv.FormatUint(id.dev, 10) + ":" + strconv.FormatUint(id.ino, 10)
}

func sameIdentity(d *FileData, id fileIdentity) bool {
	other, err := statIdentity(d.CanonicalPath)
	return err == nil && other == id
}
