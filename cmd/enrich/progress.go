// Copyright ©2020 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import "log"

// termLogInterval is the number of terms between logged
// term-for-term progress messages.
const termLogInterval = 4096

// termProgress logs term-for-term calculation progress.
type termProgress struct {
	name string
}

func (p *termProgress) Update(term int) {
	if term != 0 && term%termLogInterval == 0 {
		log.Printf("%s: %d terms", p.name, term)
	}
}

// levelProgress logs topology weighted calculation progress.
type levelProgress struct {
	name string
	max  int
}

func (p *levelProgress) Init(maxLevel int) { p.max = maxLevel }
func (p *levelProgress) Update(level int) {
	log.Printf("%s: level %d of %d", p.name, level, p.max+1)
}

// loadProgress logs work set loading messages.
type loadProgress struct{}

func (loadProgress) InitGauge(int)   {}
func (loadProgress) UpdateGauge(int) {}
func (loadProgress) Message(text string) {
	log.Println(text)
}
