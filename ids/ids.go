// Package ids pins down the bus layout shared by every board on the
// vehicle network: packet identifiers, byte offsets of each field within
// the 8-byte payload, and the scale used when a physical quantity is
// stored as a scaled integer. Changing a packet here changes it for all
// boards at once.
package ids

// Accelerator pedal position sensor packet.
const (
	APPSPacketID     = 0xD0
	APPSPacketFreqHz = 333
	APPSIntervalMS   = 3 // 1000 / APPSPacketFreqHz, rounded to the tick

	APPS1VoltageOffset = 0
	APPS2VoltageOffset = 2
	APPS1TravelOffset  = 4
	APPS2TravelOffset  = 6

	// Voltages are stored as uint16 counts of 1mV, travel as uint16
	// counts of 0.01%.
	APPSVoltagePrecision = 0.001
	APPSTravelPrecision  = 0.01
)

// Accelerator pedal fault packet.
const (
	APPSFaultPacketID = 0xD1

	AccelPedalTravelOffset = 0
	APPSFaultVectorOffset  = 2

	AccelPedalTravelPrecision = 0.01
)

// Firmware update stream. The host announces the target address of the
// next run of bytes, then streams the bytes themselves in payload-sized
// records.
const (
	FlashAddrPacketID = 0x7A0
	FlashDataPacketID = 0x7A1

	FlashAddrOffset = 0 // uint32, absolute target address
	FlashLenOffset  = 4 // uint8, bytes carried by the next data packet
)

// Receive deadlines for safety-relevant feeds, in milliseconds.
const (
	APPSTimeoutMS = 50
)
