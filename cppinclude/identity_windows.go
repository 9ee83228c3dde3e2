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

//go:build windows

package cppinclude

import (
	"strconv"

	"golang.org/x/sys/windows"
)

// fileIdentity is volume+file-id on Windows, queried via
// GetFileInformationByHandle so hard links and junctions collapse to one
// cache entry the same way device+inode does on POSIX.
type fileIdentity struct {
	volume uint32
	fileHi uint32
	fileLo uint32
}

func statIdentity(path string) (fileIdentity, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fileIdentity{}, err
	}
	h, err := windows.CreateFile(p, 0, windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil, windows.OPEN_EXISTING, windows.FILE_FLAG_BACKUP_SEMANTICS, 0)
	if err != nil {
		return fileIdentity{}, err
	}
	defer windows.CloseHandle(h)

	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &info); err != nil {
		return fileIdentity{}, err
	}
	return fileIdentity{
		volume: info.VolumeSerialNumber,
		fileHi: info.FileIndexHigh,
		fileLo: info.FileIndexLow,
	}, nil
}

func identityKey(id fileIdentity) string {
	return "win:" + strconv.FormatUint(uint64(id.volume), 10) + ":" +
		strconv.FormatUint(uint64(id.fileHi), 10) + ":" + strconv.FormatUint(uint64(id.fileLo), 10)
}

func sameIdentity(d *FileData, id fileIdentity) bool {
	other, err := statIdentity(d.CanonicalPath)
	return err == nil && other == id
}
