package depot

import (
	"fmt"
	"unsafe"
)

const minColumnGrowth = 4

// Column is one component type's contiguous storage.
//
// Rows below Len hold valid values. Rows from Len up to Cap are zeroed and are
// never read, dropped or exposed. Row indices stay valid only until the next
// structural change to the column.
type Column struct {
	desc  *Descriptor
	data  unsafe.Pointer
	len   int
	cap   int
	spill unsafe.Pointer
}

func newColumn(desc *Descriptor, capacity int) *Column {
	c := &Column{desc: desc}
	if capacity > 0 {
		c.data = desc.alloc(capacity)
		c.cap = capacity
	}
	return c
}

func (c *Column) Descriptor() *Descriptor {
	return c.desc
}

func (c *Column) Len() int {
	return c.len
}

func (c *Column) Cap() int {
	return c.cap
}

// Push appends a copy of the value at src and returns its row.
func (c *Column) Push(src unsafe.Pointer) int {
	row := c.PushZero()
	c.desc.move(c.at(row), src, 1)
	return row
}

// PushZero appends a zero value and returns its row.
func (c *Column) PushZero() int {
	if c.len == c.cap {
		c.grow(c.len + 1)
	}
	c.len++
	return c.len - 1
}

// Pointer returns the address of row. It panics if row is not a live row.
func (c *Column) Pointer(row int) unsafe.Pointer {
	c.check(row)
	return c.at(row)
}

// Set overwrites row with a copy of the value at src. The previous value is not
// dropped.
func (c *Column) Set(row int, src unsafe.Pointer) {
	c.check(row)
	c.desc.move(c.at(row), src, 1)
}

// Bytes returns a read-only view of row's raw memory.
func (c *Column) Bytes(row int) []byte {
	c.check(row)
	if c.desc.layout.Size == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(c.at(row)), c.desc.layout.Size)
}

// SwapRemove takes the value out of row and fills the hole with the last row.
// Nothing is dropped: the returned Removed owns the value and the caller must
// either move it into another column or drop it before the next SwapRemove on
// this column.
func (c *Column) SwapRemove(row int) Removed {
	c.check(row)
	if c.spill == nil {
		c.spill = c.desc.alloc(1)
	}
	c.desc.move(c.spill, c.at(row), 1)
	c.fill(row)
	return Removed{column: c}
}

// DropRow destructs the value in row and fills the hole with the last row.
func (c *Column) DropRow(row int) {
	c.check(row)
	c.desc.release(c.at(row), 1)
	c.fill(row)
}

// fill moves the last row into row and shrinks the column by one.
func (c *Column) fill(row int) {
	last := c.len - 1
	if row != last {
		c.desc.move(c.at(row), c.at(last), 1)
	}
	c.desc.zero(c.at(last), 1)
	c.len--
}

// clear destructs every live row.
func (c *Column) clear() {
	c.desc.release(c.data, c.len)
	c.len = 0
}

func (c *Column) grow(need int) {
	newCap := max(2*c.cap, need, minColumnGrowth)
	data := c.desc.alloc(newCap)
	if c.len > 0 {
		c.desc.move(data, c.data, c.len)
	}
	c.data = data
	c.cap = newCap
}

func (c *Column) at(row int) unsafe.Pointer {
	return unsafe.Add(c.data, uintptr(row)*c.desc.layout.Size)
}

func (c *Column) check(row int) {
	if row < 0 || row >= c.len {
		panic(fmt.Sprintf("depot: row %d out of range for %s column of length %d", row, c.desc.Name(), c.len))
	}
}

// Removed is a value taken out of a Column by SwapRemove.
type Removed struct {
	column *Column
}

// Descriptor returns the type of the removed value.
func (r Removed) Descriptor() *Descriptor {
	return r.column.desc
}

// Pointer returns the address of the removed value. It is valid until the
// value is moved or dropped.
func (r Removed) Pointer() unsafe.Pointer {
	return r.column.spill
}

// MoveTo transplants the value into row of dst without constructing or
// dropping anything. dst must hold the same component type.
func (r Removed) MoveTo(dst *Column, row int) {
	if dst.desc != r.column.desc {
		panic(fmt.Sprintf("depot: cannot move %s into %s column", r.column.desc.Name(), dst.desc.Name()))
	}
	dst.Set(row, r.column.spill)
	r.column.desc.zero(r.column.spill, 1)
}

// Drop destructs the value.
func (r Removed) Drop() {
	r.column.desc.release(r.column.spill, 1)
}
