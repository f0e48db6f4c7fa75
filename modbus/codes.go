package modbus

// Public function codes for bit-wise access.
const (
	FuncReadCoils          = 1
	FuncReadDiscreteInputs = 2
	FuncWriteSingleCoil    = 5
	FuncWriteMultipleCoils = 15
)

// Public function codes for 16-bit register access.
const (
	FuncReadHoldingRegisters   = 3
	FuncReadInputRegisters     = 4
	FuncWriteSingleRegister    = 6
	FuncWriteMultipleRegisters = 16
)

// Exception codes defined by the Modbus application protocol.
const (
	ExceptionIllegalFunction        = 1
	ExceptionIllegalDataAddress     = 2
	ExceptionIllegalDataValue       = 3
	ExceptionServerDeviceFailure    = 4
	ExceptionAcknowledge            = 5
	ExceptionServerDeviceBusy       = 6
	ExceptionMemoryParityError      = 8
	ExceptionGatewayPathUnavailable = 10
	ExceptionGatewayTargetFailed    = 11
)

// CoilOn and CoilOff are the register payloads of a write-single-coil
// request in the external representation.
const (
	CoilOn  uint16 = 0xFF00
	CoilOff uint16 = 0x0000
)
