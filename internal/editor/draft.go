// Package editor holds the transient draft area being created or edited.
package editor

import (
	"errors"
	"fmt"

	"github.com/debemdeboas/sorteio-admin/internal/model"
)

var ErrPontoIndexOutOfRange = errors.New("ponto index out of range")

// Draft is the single editing buffer. It either describes a new area or the
// replacement for the area at EditIndex of the active process.
type Draft struct {
	area      model.Area
	editing   bool
	editIndex int
}

func NewDraft() *Draft {
	return &Draft{area: model.NewArea()}
}

// Reset discards the buffer and leaves edit mode.
func (d *Draft) Reset() {
	d.area = model.NewArea()
	d.editing = false
	d.editIndex = 0
}

// Load starts editing the area at index. Any unsaved values are dropped.
func (d *Draft) Load(index int, area model.Area) {
	d.area = area.Clone()
	d.editing = true
	d.editIndex = index
}

// EditIndex returns the target index and true when the draft edits an existing area.
func (d *Draft) EditIndex() (int, bool) {
	return d.editIndex, d.editing
}

// Retarget points the draft at a new index after the area list shifted.
func (d *Draft) Retarget(index int) {
	d.editIndex = index
}

// Detach keeps the values but turns the draft into a new area.
func (d *Draft) Detach() {
	d.editing = false
	d.editIndex = 0
}

// Snapshot returns a copy of the buffered area.
func (d *Draft) Snapshot() model.Area {
	return d.area.Clone()
}

// Replace overwrites every field of the buffer, keeping the edit target.
func (d *Draft) Replace(area model.Area) {
	d.area = area.Clone()
}

func (d *Draft) SetFaculdade(v string) {
	d.area.Faculdade = v
}

func (d *Draft) SetArea(v string) {
	d.area.Area = v
}

// AddPonto appends an empty ponto slot.
func (d *Draft) AddPonto() {
	d.area.Pontos = append(d.area.Pontos, "")
}

func (d *Draft) SetPonto(i int, v string) error {
	if i < 0 || i >= len(d.area.Pontos) {
		return fmt.Errorf("%w: %d of %d", ErrPontoIndexOutOfRange, i, len(d.area.Pontos))
	}
	d.area.Pontos[i] = v
	return nil
}

// RemovePonto drops the slot at i. The list may become empty.
func (d *Draft) RemovePonto(i int) error {
	if i < 0 || i >= len(d.area.Pontos) {
		return fmt.Errorf("%w: %d of %d", ErrPontoIndexOutOfRange, i, len(d.area.Pontos))
	}
	d.area.Pontos = append(d.area.Pontos[:i:i], d.area.Pontos[i+1:]...)
	return nil
}
