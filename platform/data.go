package platform

import "encoding/binary"

// Coefficients are the Q15 coefficients of a 32-tap low-pass filter.
var Coefficients = []int16{
	43, 51, 13, -86, -179, -120, 170, 512,
	497, -148, -1127, -1523, -372, 2496, 6036, 8482,
	8482, 6036, 2496, -372, -1523, -1127, -148, 497,
	512, 170, -120, -179, -86, 13, 51, 43,
}

// InputSamples mixes a slow and a fast sine wave.
var InputSamples = []int16{
	1918, 2745, -679, 8002, 4014, 4759, 11046, 4249,
	8969, 10089, 3677, 10240, 5673, 2542, 7847, -436,
	992, 2421, -5981, -865, -4190, -9074, -2827, -9573,
	-8863, -4490, -11659, -5745, -5272, -9555, -1088, -4632,
	-3926, 3375, -2369, 3211, 6214, 1130, 9239, 6770,
	4863, 11937, 5254, 7487, 10327, 2505, 7819, 5047,
	-438, 5371, -1918, -2745, 679, -8002, -4014, -4759,
	-11046, -4249, -8969, -10089, -3677, -10240, -5673, -2542,
	-7847, 436, -992, -2421, 5981, 865, 4190, 9074,
	2827, 9573, 8863, 4490, 11659, 5745, 5272, 9555,
}

// SamplesToBytes encodes 16-bit samples as little-endian bytes.
func SamplesToBytes(s []int16) []byte {
	data := make([]byte, 2*len(s))
	for i, x := range s {
		binary.LittleEndian.PutUint16(data[2*i:], uint16(x))
	}

	return data
}

// BytesToSamples decodes little-endian bytes into 16-bit samples.
func BytesToSamples(data []byte) []int16 {
	s := make([]int16, len(data)/2)
	for i := range s {
		s[i] = int16(binary.LittleEndian.Uint16(data[2*i:]))
	}

	return s
}
