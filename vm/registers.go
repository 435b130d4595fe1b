package vm

import "math"

// rawReg and setRawReg are the base accessors every typed getReg*/setReg*
// method builds on: a register is just a uint64 cell at vm.base+idx, its
// bit pattern meaning whatever the opcode that reads it says it means
// (spec.md §3.7 and §4.3's "release builds may trust opcode encoding").
func (vm *VM) rawReg(idx int) uint64       { return vm.registers[vm.base+idx] }
func (vm *VM) setRawReg(idx int, v uint64) { vm.registers[vm.base+idx] = v }

// getRegInt/setRegInt access a register as Fox's 64-bit signed int.
func (vm *VM) getRegInt(idx int) int64    { return int64(vm.rawReg(idx)) }
func (vm *VM) setRegInt(idx int, v int64) { vm.setRawReg(idx, uint64(v)) }

// getRegChar/setRegChar access a register as a Unicode code point. Chars
// share StoreSmallInt/LoadIntK with plain ints (codegen/exprgen.go's
// VisitCharLiteral), so the bit representation is identical to getRegInt's
// — only the Go-side type differs.
func (vm *VM) getRegChar(idx int) rune    { return rune(vm.getRegInt(idx)) }
func (vm *VM) setRegChar(idx int, r rune) { vm.setRegInt(idx, int64(r)) }

// getRegDouble/setRegDouble access a register as Fox's 64-bit float,
// bitcasting rather than numerically converting — the original VM.hpp
// special-cases FoxDouble the same way, via llvm::BitsToDouble/
// DoubleToBits, because a numeric int64<->float64 conversion would corrupt
// the value instead of reinterpreting its bits.
func (vm *VM) getRegDouble(idx int) float64 {
	return math.Float64frombits(vm.rawReg(idx))
}
func (vm *VM) setRegDouble(idx int, v float64) {
	vm.setRawReg(idx, math.Float64bits(v))
}

// getRegBool/setRegBool access a register as Fox's bool: 0 is false, any
// nonzero is true on read, and writes always normalize to exactly 0 or 1.
func (vm *VM) getRegBool(idx int) bool { return vm.rawReg(idx) != 0 }
func (vm *VM) setRegBool(idx int, v bool) {
	if v {
		vm.setRawReg(idx, 1)
	} else {
		vm.setRawReg(idx, 0)
	}
}

// getRegObject/setRegObject access a register as a heap object reference:
// the register holds an index into vm.heap, standing in for the original
// Objects.hpp union's raw Object* field (see object.go).
func (vm *VM) getRegObject(idx int) Object {
	return vm.heap[vm.rawReg(idx)]
}
func (vm *VM) setRegObject(idx int, obj Object) {
	vm.heap = append(vm.heap, obj)
	vm.setRawReg(idx, uint64(len(vm.heap)-1))
}

// getRegString/getRegArray narrow a heap-object register to its concrete
// kind. Both panic (via a Go type assertion) if codegen ever emitted an
// opcode against a register of the wrong kind — a programmer-fatal bug,
// not a runtime error a Fox program could trigger by itself.
func (vm *VM) getRegString(idx int) string {
	return vm.getRegObject(idx).(*StringObject).Value
}
func (vm *VM) getRegArray(idx int) *ArrayObject {
	return vm.getRegObject(idx).(*ArrayObject)
}
