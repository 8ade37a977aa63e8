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

package apiserver

import (
	"errors"
	"fmt"

	"github.com/fermi-ad/extapi-acsys/pkg/acsys"
	"github.com/fermi-ad/extapi-acsys/pkg/subscription"
)

// dataRequest starts an acceleratorData stream.
type dataRequest struct {
	DRFs      []string `json:"drfs"`
	StartTime *float64 `json:"startTime,omitempty"`
	EndTime   *float64 `json:"endTime,omitempty"`
}

// eventsRequest starts a clock event stream.
type eventsRequest struct {
	Events []int32 `json:"events"`
}

// plotRequest starts a plot stream.
type plotRequest struct {
	PlotID       string   `json:"plotId,omitempty"`
	ConfigID     *int     `json:"configurationId,omitempty"`
	DRFs         []string `json:"drfs,omitempty"`
	StartTime    *float64 `json:"startTime,omitempty"`
	EndTime      *float64 `json:"endTime,omitempty"`
	MaxPoints    int      `json:"maxPoints,omitempty"`
	FrameLimit   int      `json:"frameLimit,omitempty"`
	TriggerEvent *int32   `json:"triggerEvent,omitempty"`
}

func (r plotRequest) toPlotRequest() subscription.PlotRequest {
	return subscription.PlotRequest{
		PlotID:       r.PlotID,
		ConfigID:     r.ConfigID,
		DRFs:         r.DRFs,
		Start:        r.StartTime,
		End:          r.EndTime,
		MaxPoints:    r.MaxPoints,
		FrameLimit:   r.FrameLimit,
		TriggerEvent: r.TriggerEvent,
	}
}

type readingJSON struct {
	Timestamp float64     `json:"timestamp"`
	Value     interface{} `json:"value"`
}

type replyJSON struct {
	Ref  int           `json:"refId"`
	Data []readingJSON `json:"data"`
}

// encodeValue renders a value as plain JSON. Statuses are objects so they can't be mistaken for scalars.
func encodeValue(v acsys.Value) interface{} {
	switch v := v.(type) {
	case acsys.Scalar:
		return float64(v)
	case acsys.ScalarArray:
		return []float64(v)
	case acsys.Text:
		return string(v)
	case acsys.TextArray:
		return []string(v)
	case acsys.Raw:
		return map[string][]byte{"raw": v}
	case acsys.Status:
		return map[string]int16{"status": int16(v)}
	case acsys.Struct:
		out := make(map[string]interface{}, len(v))
		for k, f := range v {
			out[k] = encodeValue(f)
		}
		return out
	default:
		return nil
	}
}

func encodeReply(r acsys.ChannelReply) replyJSON {
	out := replyJSON{Ref: r.Ref, Data: make([]readingJSON, len(r.Readings))}
	for i, rd := range r.Readings {
		out.Data[i] = readingJSON{Timestamp: rd.Timestamp, Value: encodeValue(rd.Value)}
	}
	return out
}

type pointJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type plotChannelJSON struct {
	Units  string      `json:"channelUnits"`
	Status int16       `json:"channelStatus"`
	Rate   string      `json:"channelRate"`
	Data   []pointJSON `json:"channelData"`
}

type plotFrameJSON struct {
	PlotID           string            `json:"plotId"`
	Timestamp        float64           `json:"tStamp"`
	TriggerTimestamp *float64          `json:"triggerTStamp,omitempty"`
	Data             []plotChannelJSON `json:"data"`
}

// encodeFrame renders a plot frame. Windowers only let scalar readings into frames.
func encodeFrame(f *acsys.PlotFrame) plotFrameJSON {
	out := plotFrameJSON{
		PlotID:           f.PlotID,
		Timestamp:        f.Timestamp,
		TriggerTimestamp: f.TriggerTimestamp,
		Data:             make([]plotChannelJSON, len(f.Channels)),
	}
	for i, ch := range f.Channels {
		points := make([]pointJSON, 0, len(ch.Points))
		for _, p := range ch.Points {
			if y, ok := p.Value.(acsys.Scalar); ok {
				points = append(points, pointJSON{X: p.Timestamp, Y: float64(y)})
			}
		}
		out.Data[i] = plotChannelJSON{Units: ch.Units, Status: ch.Status, Rate: ch.RateLabel, Data: points}
	}
	return out
}

type clockEventJSON struct {
	Event     int32   `json:"event"`
	Timestamp float64 `json:"timestamp"`
}

type devicePropertyJSON struct {
	PrimaryUnits string    `json:"primaryUnits,omitempty"`
	CommonUnits  string    `json:"commonUnits,omitempty"`
	MinVal       float64   `json:"minVal"`
	MaxVal       float64   `json:"maxVal"`
	PrimaryIndex uint32    `json:"primaryIndex"`
	CommonIndex  uint32    `json:"commonIndex"`
	Coeff        []float64 `json:"coeff"`
}

type digControlEntryJSON struct {
	Value     int32  `json:"value"`
	ShortName string `json:"shortName"`
	LongName  string `json:"longName"`
}

type digControlJSON struct {
	Entries []digControlEntryJSON `json:"entries"`
}

type digStatusEntryJSON struct {
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

type digExtStatusEntryJSON struct {
	BitNo       uint32 `json:"bitNo"`
	Color0      uint32 `json:"color0"`
	Name0       string `json:"name0"`
	Color1      uint32 `json:"color1"`
	Name1       string `json:"name1"`
	Description string `json:"description"`
}

type digStatusJSON struct {
	Entries    []digStatusEntryJSON    `json:"entries"`
	ExtEntries []digExtStatusEntryJSON `json:"extEntries"`
}

type deviceInfoJSON struct {
	Name        string              `json:"name"`
	Description string              `json:"description,omitempty"`
	Reading     *devicePropertyJSON `json:"reading,omitempty"`
	Setting     *devicePropertyJSON `json:"setting,omitempty"`
	DigControl  *digControlJSON     `json:"digControl,omitempty"`
	DigStatus   *digStatusJSON      `json:"digStatus,omitempty"`
	Error       string              `json:"error,omitempty"`
}

func encodeProperty(p *acsys.DeviceProperty) *devicePropertyJSON {
	if p == nil {
		return nil
	}
	coeff := p.Coeff
	if coeff == nil {
		coeff = []float64{}
	}
	return &devicePropertyJSON{
		PrimaryUnits: p.PrimaryUnits,
		CommonUnits:  p.CommonUnits,
		MinVal:       p.MinVal,
		MaxVal:       p.MaxVal,
		PrimaryIndex: p.PrimaryIndex,
		CommonIndex:  p.CommonIndex,
		Coeff:        coeff,
	}
}

func encodeDigControl(d *acsys.DigControl) *digControlJSON {
	if d == nil {
		return nil
	}
	out := &digControlJSON{Entries: make([]digControlEntryJSON, len(d.Entries))}
	for i, e := range d.Entries {
		out.Entries[i] = digControlEntryJSON(e)
	}
	return out
}

func encodeDigStatus(d *acsys.DigStatus) *digStatusJSON {
	if d == nil {
		return nil
	}
	out := &digStatusJSON{
		Entries:    make([]digStatusEntryJSON, len(d.Entries)),
		ExtEntries: make([]digExtStatusEntryJSON, len(d.ExtEntries)),
	}
	for i, e := range d.Entries {
		out.Entries[i] = digStatusEntryJSON(e)
	}
	for i, e := range d.ExtEntries {
		out.ExtEntries[i] = digExtStatusEntryJSON(e)
	}
	return out
}

func encodeDeviceInfo(info []acsys.DeviceInfo) []deviceInfoJSON {
	out := make([]deviceInfoJSON, len(info))
	for i, d := range info {
		out[i] = deviceInfoJSON{
			Name:        d.Name,
			Description: d.Description,
			Reading:     encodeProperty(d.Reading),
			Setting:     encodeProperty(d.Setting),
			DigControl:  encodeDigControl(d.DigControl),
			DigStatus:   encodeDigStatus(d.DigStatus),
			Error:       d.Error,
		}
	}
	return out
}

type deviceInfoRequest struct {
	Devices []string `json:"devices" binding:"required"`
}

// devValue is a setting. Exactly one field must be set.
type devValue struct {
	Scalar    *float64  `json:"scalar,omitempty"`
	ScalarArr []float64 `json:"scalarArr,omitempty"`
	Raw       []byte    `json:"raw,omitempty"`
	Text      *string   `json:"text,omitempty"`
	TextArr   []string  `json:"textArr,omitempty"`
}

var errSettingValue = errors.New("exactly one of scalar, scalarArr, raw, text or textArr must be set")

func (d devValue) toValue() (acsys.Value, error) {
	var (
		out acsys.Value
		n   int
	)
	if d.Scalar != nil {
		out, n = acsys.Scalar(*d.Scalar), n+1
	}
	if d.ScalarArr != nil {
		out, n = acsys.ScalarArray(d.ScalarArr), n+1
	}
	if d.Raw != nil {
		out, n = acsys.Raw(d.Raw), n+1
	}
	if d.Text != nil {
		out, n = acsys.Text(*d.Text), n+1
	}
	if d.TextArr != nil {
		out, n = acsys.TextArray(d.TextArr), n+1
	}
	if n != 1 {
		return nil, fmt.Errorf("%w, got %d", errSettingValue, n)
	}
	return out, nil
}

type setDeviceRequest struct {
	Device string   `json:"device" binding:"required"`
	Value  devValue `json:"value"`
}

type setDeviceReply struct {
	Status int16 `json:"status"`
}
