package depot

import (
	"reflect"
	"testing"
	"unsafe"

	"gotest.tools/v3/assert"
)

func TestNewDescriptor(t *testing.T) {
	tests := []struct {
		name     string
		desc     *Descriptor
		typ      reflect.Type
		size     uintptr
		hasDrop  bool
		typeName string
	}{
		{"Plain struct", NewDescriptor[Position](3), reflect.TypeFor[Position](), 16, false, "depot.Position"},
		{"Pointerful struct", NewDescriptor[Name](4), reflect.TypeFor[Name](), unsafe.Sizeof(Name{}), false, "depot.Name"},
		{"Dropper", NewDescriptor[Tracked](5), reflect.TypeFor[Tracked](), unsafe.Sizeof(Tracked{}), true, "depot.Tracked"},
		{"Pointer dropper", NewDescriptor[*Tracked](7), reflect.TypeFor[*Tracked](), unsafe.Sizeof(uintptr(0)), true, "*depot.Tracked"},
		{"Interface dropper", NewDescriptor[Dropper](8), reflect.TypeFor[Dropper](), unsafe.Sizeof(any(nil)), true, "depot.Dropper"},
		{"Zero sized", NewDescriptor[struct{}](6), reflect.TypeFor[struct{}](), 0, false, "struct {}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.desc.Type(), tt.typ)
			assert.Equal(t, tt.desc.Layout().Size, tt.size)
			assert.Equal(t, tt.desc.Drop() != nil, tt.hasDrop)
			assert.Equal(t, tt.desc.Name(), tt.typeName)
		})
	}
}

func TestDescriptorDropCallsEachValue(t *testing.T) {
	drops := 0
	desc := NewDescriptor[Tracked](0)
	values := []Tracked{{drops: &drops}, {drops: &drops}, {drops: &drops}}

	desc.Drop()(unsafe.Pointer(&values[0]), len(values))
	assert.Equal(t, drops, 3)
}

func TestDescriptorDropSkipsNil(t *testing.T) {
	drops := 0
	pointers := []*Tracked{{drops: &drops}, nil, {drops: &drops}}
	NewDescriptor[*Tracked](0).Drop()(unsafe.Pointer(&pointers[0]), len(pointers))
	assert.Equal(t, drops, 2)

	droppers := []Dropper{nil, &Tracked{drops: &drops}}
	NewDescriptor[Dropper](1).Drop()(unsafe.Pointer(&droppers[0]), len(droppers))
	assert.Equal(t, drops, 3)
}

func TestDescriptorReleaseZeroes(t *testing.T) {
	drops := 0
	desc := NewDescriptor[Tracked](0)
	value := Tracked{Tag: 9, drops: &drops}

	desc.release(unsafe.Pointer(&value), 1)
	assert.Equal(t, drops, 1)
	assert.Equal(t, value, Tracked{})
}

func TestRegistryMemoizesDescriptors(t *testing.T) {
	sto := newTestStorage()

	first, err := Register[Position](sto)
	assert.NilError(t, err)
	second, err := Register[Position](sto)
	assert.NilError(t, err)
	other, err := Register[Velocity](sto)
	assert.NilError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, first.ID(), ComponentTypeID(0))
	assert.Equal(t, other.ID(), ComponentTypeID(1))

	found, ok := ComponentTypeOf[Velocity](sto)
	assert.Assert(t, ok)
	assert.Equal(t, found, other)

	_, ok = ComponentTypeOf[Health](sto)
	assert.Assert(t, !ok, "lookup must not register")
	assert.Equal(t, len(sto.Descriptors()), 2)
}

func TestRegistryIsPerStorage(t *testing.T) {
	a := newTestStorage()
	b := newTestStorage()

	_, err := Register[Position](a)
	assert.NilError(t, err)
	inB, err := Register[Velocity](b)
	assert.NilError(t, err)

	assert.Equal(t, inB.ID(), ComponentTypeID(0))
}
