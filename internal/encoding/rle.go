package encoding

import (
	"bytes"
	"encoding/base64"
	"encoding/binary"
	"fmt"
)

// EncodeRLE encodes a row-major sequence of alpha values into base64(varint pairs).
// The pairs are (alpha, run_len) repeated.
func EncodeRLE(alpha []uint8) string {
	var buf bytes.Buffer
	var tmp [binary.MaxVarintLen64]byte

	for i := 0; i < len(alpha); {
		a := alpha[i]
		run := 1
		for i+run < len(alpha) && alpha[i+run] == a {
			run++
		}
		n := binary.PutUvarint(tmp[:], uint64(a))
		buf.Write(tmp[:n])
		n = binary.PutUvarint(tmp[:], uint64(run))
		buf.Write(tmp[:n])
		i += run
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

// DecodeRLE reverses EncodeRLE. want bounds the decoded length (0 = unbounded).
func DecodeRLE(b64 string, want int) ([]uint8, error) {
	raw, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return nil, err
	}
	var out []uint8
	for i := 0; i < len(raw); {
		a, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		run, n := binary.Uvarint(raw[i:])
		if n <= 0 {
			return nil, fmt.Errorf("bad varint at %d", i)
		}
		i += n
		if a > 0xFF {
			return nil, fmt.Errorf("alpha too large: %d", a)
		}
		if want > 0 && uint64(len(out))+run > uint64(want) {
			return nil, fmt.Errorf("run overflows %d pixels", want)
		}
		for k := uint64(0); k < run; k++ {
			out = append(out, uint8(a))
		}
	}
	if want > 0 && len(out) != want {
		return nil, fmt.Errorf("decoded %d pixels, want %d", len(out), want)
	}
	return out, nil
}
