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

//go:build !unix && !windows

package cppinclude

import (
	"os"
	"strconv"
)

// fileIdentity falls back to size+modtime on platforms with neither a
// POSIX stat nor a Win32 file-information API.
type fileIdentity struct {
	size    int64
	modTime int64
}

func statIdentity(path string) (fileIdentity, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileIdentity{}, err
	}
	return fileIdentity{size: info.Size(), modTime: info.ModTime().UnixNano()}, nil
}

func identityKey(id fileIdentity) string {
	return "generic:" + strconv.FormatInt(id.size, 10) + ":" + strconv.FormatInt(id.modTime, 10)
}

func sameIdentity(d *FileData, id fileIdentity) bool {
	other, err := statIdentity(d.CanonicalPath)
	return err == nil && other == id
}
