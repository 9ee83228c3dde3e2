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

package collections

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetOfAndContains(t *testing.T) {
	s := SetOf("a", "b", "c")
	assert.True(t, s.Contains("a"))
	assert.False(t, s.Contains("z"))
	assert.Len(t, s, 3)
}

func TestSetAddAndJoin(t *testing.T) {
	s := make(Set[string])
	s.Add("a").Add("b")
	assert.True(t, s.Contains("a"))

	other := SetOf("b", "c")
	s.Join(other)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, s.Values())
}

func TestSetDiffAndIntersect(t *testing.T) {
	a := SetOf(1, 2, 3)
	b := SetOf(2, 3, 4)

	assert.ElementsMatch(t, []int{1}, a.Diff(b).Values())
	assert.ElementsMatch(t, []int{2, 3}, a.Intersect(b).Values())
	assert.True(t, a.Intersects(b))
	assert.False(t, SetOf(1).Intersects(SetOf(2)))
}

func TestSetSortedValues(t *testing.T) {
	s := SetOf(3, 1, 2)
	got := s.SortedValues(func(l, r int) int { return l - r })
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestFindDuplicates(t *testing.T) {
	got := FindDuplicates([]string{"a", "b", "a", "c", "b", "b"})
	assert.ElementsMatch(t, []string{"a", "b"}, got)
}

func TestToSetDedups(t *testing.T) {
	s := ToSet([]int{1, 1, 2, 2, 3})
	assert.Len(t, s, 3)
}
