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

package backend

import (
	"fmt"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
)

// Value kinds on the wire.
const (
	kindScalar      = "scalar"
	kindScalarArray = "scalarArray"
	kindText        = "text"
	kindTextArray   = "textArray"
	kindRaw         = "raw"
	kindStatus      = "status"
	kindStruct      = "struct"
)

type wireValue struct {
	Kind        string               `json:"kind"`
	Scalar      float64              `json:"scalar,omitempty"`
	ScalarArray []float64            `json:"scalarArray,omitempty"`
	Text        string               `json:"text,omitempty"`
	TextArray   []string             `json:"textArray,omitempty"`
	Raw         []byte               `json:"raw,omitempty"`
	Status      int16                `json:"status,omitempty"`
	Struct      map[string]wireValue `json:"struct,omitempty"`
}

func (w wireValue) toValue() (acsys.Value, error) {
	switch w.Kind {
	case kindScalar:
		return acsys.Scalar(w.Scalar), nil
	case kindScalarArray:
		return acsys.ScalarArray(w.ScalarArray), nil
	case kindText:
		return acsys.Text(w.Text), nil
	case kindTextArray:
		return acsys.TextArray(w.TextArray), nil
	case kindRaw:
		return acsys.Raw(w.Raw), nil
	case kindStatus:
		return acsys.Status(w.Status), nil
	case kindStruct:
		out := make(acsys.Struct, len(w.Struct))
		for k, v := range w.Struct {
			val, err := v.toValue()
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", k, err)
			}
			out[k] = val
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unknown value kind %q", w.Kind)
	}
}

func fromValue(v acsys.Value) (wireValue, error) {
	switch v := v.(type) {
	case acsys.Scalar:
		return wireValue{Kind: kindScalar, Scalar: float64(v)}, nil
	case acsys.ScalarArray:
		return wireValue{Kind: kindScalarArray, ScalarArray: v}, nil
	case acsys.Text:
		return wireValue{Kind: kindText, Text: string(v)}, nil
	case acsys.TextArray:
		return wireValue{Kind: kindTextArray, TextArray: v}, nil
	case acsys.Raw:
		return wireValue{Kind: kindRaw, Raw: v}, nil
	case acsys.Status:
		return wireValue{Kind: kindStatus, Status: int16(v)}, nil
	case acsys.Struct:
		fields := make(map[string]wireValue, len(v))
		for k, f := range v {
			w, err := fromValue(f)
			if err != nil {
				return wireValue{}, fmt.Errorf("field %q: %w", k, err)
			}
			fields[k] = w
		}
		return wireValue{Kind: kindStruct, Struct: fields}, nil
	default:
		return wireValue{}, fmt.Errorf("unsupported value type %T", v)
	}
}

type wireReading struct {
	Timestamp float64   `json:"timestamp"`
	Value     wireValue `json:"value"`
}

// dataReply carries readings of one channel. An empty reply from the archiver ends that channel's archive.
type dataReply struct {
	Ref      int           `json:"ref"`
	Readings []wireReading `json:"readings"`
}

func (d *dataReply) toReply() (acsys.ChannelReply, error) {
	r := acsys.ChannelReply{Ref: d.Ref, Readings: make([]acsys.Reading, 0, len(d.Readings))}
	for i, rd := range d.Readings {
		v, err := rd.Value.toValue()
		if err != nil {
			return acsys.ChannelReply{}, fmt.Errorf("ref %d, reading %d: %w", d.Ref, i, err)
		}
		r.Readings = append(r.Readings, acsys.Reading{Timestamp: rd.Timestamp, Value: v})
	}
	return r, nil
}

type archiveRequest struct {
	DRFs  []string `json:"drfs"`
	Start float64  `json:"start"`
	End   float64  `json:"end"`
}

type acquireRequest struct {
	DRFs []string `json:"drfs"`
}

type settingRequest struct {
	Device string    `json:"device"`
	Value  wireValue `json:"value"`
}

type settingReply struct {
	Status int16 `json:"status"`
}

type clockRequest struct {
	Events []int32 `json:"events"`
}

type clockReply struct {
	Events []wireClockEvent `json:"events"`
}

type wireClockEvent struct {
	Event     int32   `json:"event"`
	Timestamp float64 `json:"timestamp"`
}

type deviceInfoRequest struct {
	Devices []string `json:"devices"`
}

type deviceInfoReply struct {
	Set []wireDeviceInfo `json:"set"`
}

type wireProperty struct {
	PrimaryUnits string    `json:"primaryUnits,omitempty"`
	CommonUnits  string    `json:"commonUnits,omitempty"`
	MinVal       float64   `json:"minVal"`
	MaxVal       float64   `json:"maxVal"`
	PIndex       uint32    `json:"pIndex"`
	CIndex       uint32    `json:"cIndex"`
	Coeff        []float64 `json:"coeff,omitempty"`
}

type wireDigControlItem struct {
	Value     int32  `json:"value"`
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
}

type wireDigControl struct {
	Cmds []wireDigControlItem `json:"cmds"`
}

type wireDigStatusItem struct {
	MaskVal    uint32 `json:"maskVal"`
	MatchVal   uint32 `json:"matchVal"`
	Invert     bool   `json:"invert"`
	ShortName  string `json:"shortName"`
	LongName   string `json:"longName"`
	TrueStr    string `json:"trueStr"`
	TrueColor  uint32 `json:"trueColor"`
	TrueChar   string `json:"trueChar"`
	FalseStr   string `json:"falseStr"`
	FalseColor uint32 `json:"falseColor"`
	FalseChar  string `json:"falseChar"`
}

type wireDigExtStatusItem struct {
	BitNo       uint32 `json:"bitNo"`
	Color0      uint32 `json:"color0"`
	Name0       string `json:"name0"`
	Color1      uint32 `json:"color1"`
	Name1       string `json:"name1"`
	Description string `json:"description"`
}

type wireDigStatus struct {
	Bits    []wireDigStatusItem    `json:"bits"`
	ExtBits []wireDigExtStatusItem `json:"extBits"`
}

type wireDeviceInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Reading     *wireProperty   `json:"reading,omitempty"`
	Setting     *wireProperty   `json:"setting,omitempty"`
	DigControl  *wireDigControl `json:"digControl,omitempty"`
	DigStatus   *wireDigStatus  `json:"digStatus,omitempty"`
	Error       string          `json:"error,omitempty"`
}

func (p *wireProperty) toProperty() *acsys.DeviceProperty {
	if p == nil {
		return nil
	}
	return &acsys.DeviceProperty{
		PrimaryUnits: p.PrimaryUnits,
		CommonUnits:  p.CommonUnits,
		MinVal:       p.MinVal,
		MaxVal:       p.MaxVal,
		PrimaryIndex: p.PIndex,
		CommonIndex:  p.CIndex,
		Coeff:        p.Coeff,
	}
}

func (d *wireDigControl) toDigControl() *acsys.DigControl {
	if d == nil {
		return nil
	}
	out := &acsys.DigControl{Entries: make([]acsys.DigControlEntry, len(d.Cmds))}
	for i, c := range d.Cmds {
		out.Entries[i] = acsys.DigControlEntry{Value: c.Value, ShortName: c.ShortName, LongName: c.LongName}
	}
	return out
}

func (d *wireDigStatus) toDigStatus() *acsys.DigStatus {
	if d == nil {
		return nil
	}
	out := &acsys.DigStatus{
		Entries:    make([]acsys.DigStatusEntry, len(d.Bits)),
		ExtEntries: make([]acsys.DigExtStatusEntry, len(d.ExtBits)),
	}
	for i, b := range d.Bits {
		out.Entries[i] = acsys.DigStatusEntry(b)
	}
	for i, b := range d.ExtBits {
		out.ExtEntries[i] = acsys.DigExtStatusEntry(b)
	}
	return out
}

func (w *wireDeviceInfo) toDeviceInfo(name string) acsys.DeviceInfo {
	return acsys.DeviceInfo{
		Name:        name,
		Description: w.Description,
		Reading:     w.Reading.toProperty(),
		Setting:     w.Setting.toProperty(),
		DigControl:  w.DigControl.toDigControl(),
		DigStatus:   w.DigStatus.toDigStatus(),
		Error:       w.Error,
	}
}

type detectorRequest struct {
	DetectorID string `json:"detectorId"`
}

type scanRequest struct {
	DetectorID       string  `json:"detectorId"`
	PositionStart    float32 `json:"positionStart"`
	PositionEnd      float32 `json:"positionEnd"`
	PositionStep     float32 `json:"positionStep"`
	SamplingDuration float32 `json:"samplingDuration"`
	PulsesPerSample  int32   `json:"pulsesPerSample"`
}

type scanProgress struct {
	Message            string  `json:"message"`
	DetectorID         string  `json:"detectorId"`
	StartTime          int32   `json:"startTime"`
	CurrentPosition    float32 `json:"currentPosition"`
	ProgressPercentage int32   `json:"progressPercentage"`
}

type scanResult struct {
	Progress *scanProgress `json:"progress,omitempty"`
	Voltage  []float32     `json:"voltage"`
}

type tlgDevice struct {
	Type   string  `json:"type"`
	Name   string  `json:"name"`
	Device string  `json:"device"`
	Data   []int32 `json:"data"`
}

type tlgDevices struct {
	Devices []tlgDevice `json:"devices"`
}

type tlgPlacementReply struct {
	Status      int32   `json:"status"`
	Message     string  `json:"message"`
	Diagnostics []int32 `json:"diagnostics"`
	Placement   []int32 `json:"placement"`
	Generated   []int32 `json:"generated"`
	Parameters  []int32 `json:"parameters"`
}

type empty struct{}

type versionReply struct {
	Version string `json:"version"`
}

type xformOperation struct {
	Device string        `json:"device,omitempty"`
	Avg    *xformAverage `json:"avg,omitempty"`
}

type xformAverage struct {
	N  uint32          `json:"n"`
	Op *xformOperation `json:"op"`
}

type xformExpr struct {
	Op    *xformOperation `json:"op"`
	Event string          `json:"event"`
}

// xformResult carries either a value or the reason the expression could not be computed.
type xformResult struct {
	// Timestamp is in milliseconds since the Unix epoch.
	Timestamp int64    `json:"timestamp"`
	Value     *float64 `json:"value,omitempty"`
	Error     string   `json:"error,omitempty"`
}

func toOperation(e acsys.XFormExpr) *xformOperation {
	if e.Average == nil {
		return &xformOperation{Device: e.Device}
	}
	return &xformOperation{Avg: &xformAverage{N: e.Average.N, Op: toOperation(e.Average.Expr)}}
}
