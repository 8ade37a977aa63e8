/*
Copyright 2022 The Numaproj Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package acsys

// DeviceProperty describes the scaling of a reading or setting property.
type DeviceProperty struct {
	PrimaryUnits string
	CommonUnits  string
	// MinVal and MaxVal are advisory; the driver enforces the real limits.
	MinVal float64
	MaxVal float64
	// PrimaryIndex and CommonIndex select the scaling transforms, Coeff holds their coefficients.
	PrimaryIndex uint32
	CommonIndex  uint32
	Coeff        []float64
}

// DigControlEntry is one basic control command of a device.
type DigControlEntry struct {
	// Value is sent to the device to perform the command.
	Value     int32
	ShortName string
	LongName  string
}

// DigControl lists the basic control commands of a device.
type DigControl struct {
	Entries []DigControlEntry
}

// DigStatusEntry is one legacy basic status attribute. The raw status, complemented first when Invert is set, is
// masked with MaskVal and compared to MatchVal to decide between the true and false renditions.
type DigStatusEntry struct {
	MaskVal    uint32
	MatchVal   uint32
	Invert     bool
	ShortName  string
	LongName   string
	TrueStr    string
	TrueColor  uint32
	TrueChar   string
	FalseStr   string
	FalseColor uint32
	FalseChar  string
}

// DigExtStatusEntry describes one bit of the extended basic status.
type DigExtStatusEntry struct {
	BitNo       uint32
	Color0      uint32
	Name0       string
	Color1      uint32
	Name1       string
	Description string
}

// DigStatus holds both the legacy and the bit-wise basic status definitions of a device.
type DigStatus struct {
	Entries    []DigStatusEntry
	ExtEntries []DigExtStatusEntry
}

// DeviceInfo is what the device database knows about a device. Error is set instead of the other fields when the
// lookup failed for this device.
type DeviceInfo struct {
	Name        string
	Description string
	Reading     *DeviceProperty
	Setting     *DeviceProperty
	DigControl  *DigControl
	DigStatus   *DigStatus
	Error       string
}

// Units returns the common units of the reading property, falling back to its primary units.
func (d *DeviceInfo) Units() string {
	if d == nil || d.Reading == nil {
		return ""
	}
	if d.Reading.CommonUnits != "" {
		return d.Reading.CommonUnits
	}
	return d.Reading.PrimaryUnits
}
