package input

import (
	"errors"
	"fmt"
	"strings"
)

var ErrMalformedChunk = errors.New("malformed device chunk")

const (
	namePrefix = "N: Name="
	physPrefix = "P: Phys="
)

// parseChunk builds device out of one /proc/bus/input/devices record.
// Name and Phys are expected on the second and third line of the record,
// which holds for every kernel seen so far but is not guaranteed by the format.
func parseChunk(chunk string) (PointingDevice, error) {
	lines := strings.Split(chunk, "\n")
	if len(lines) < 3 {
		return PointingDevice{}, fmt.Errorf("%w: %d lines", ErrMalformedChunk, len(lines))
	}

	nameLine, physLine := lines[1], lines[2]
	if !strings.HasPrefix(nameLine, namePrefix) {
		return PointingDevice{}, fmt.Errorf("%w: name line missing", ErrMalformedChunk)
	}
	if !strings.HasPrefix(physLine, physPrefix) {
		return PointingDevice{}, fmt.Errorf("%w: phys line missing", ErrMalformedChunk)
	}

	name := strings.TrimPrefix(nameLine, namePrefix)
	quoted := strings.Split(name, "\"")
	if len(quoted) < 3 {
		return PointingDevice{}, fmt.Errorf("%w: unquoted name", ErrMalformedChunk)
	}
	name = quoted[1]

	device := PointingDevice{
		Name: name,
		Phys: strings.TrimSpace(strings.TrimPrefix(physLine, physPrefix)),
		Type: Classify(name),
	}
	return device, nil
}

// unmarshal parses device listing, only records mentioning mouse handler are taken into account.
// Returns pointing devices and number of skipped malformed records.
func unmarshal(data string) ([]PointingDevice, int) {
	var devices = make([]PointingDevice, 0)
	var skipped int

	data = strings.ReplaceAll(strings.TrimSpace(data), "\r\n", "\n")
	if data == "" {
		return devices, 0
	}

	for _, chunk := range strings.Split(data, "\n\n") {
		chunk = strings.Trim(chunk, "\n")
		if !strings.Contains(chunk, "mouse") {
			continue
		}

		device, err := parseChunk(chunk)
		if err != nil {
			skipped++
			continue
		}
		devices = append(devices, device)
	}

	return devices, skipped
}
