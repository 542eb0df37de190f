// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package calculation

// TermProgress receives progress from a term-for-term calculation.
// Update is called with the index of the term about to be processed
// every 16 terms. Implementations must not block.
type TermProgress interface {
	Update(term int)
}

// LevelProgress receives progress from a topology weighted
// calculation. Init is called once with the deepest level to be
// processed and Update once per level with the number of levels
// started. Implementations must not block.
type LevelProgress interface {
	Init(maxLevel int)
	Update(level int)
}

// progressInterval is the number of terms between progress
// updates and cancellation checks.
const progressInterval = 16
