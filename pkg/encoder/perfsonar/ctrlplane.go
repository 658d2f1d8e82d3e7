// Copyright 2026 The unisencoder Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package perfsonar

import (
	"strconv"

	"github.com/periscope-ps/unisencoder/pkg/encoder"
	"github.com/periscope-ps/unisencoder/pkg/encoder/source"
	"github.com/periscope-ps/unisencoder/pkg/private/serrors"
	"github.com/periscope-ps/unisencoder/pkg/unis"
	"github.com/periscope-ps/unisencoder/pkg/urn"
)

// registerCtrlPlane registers the handlers of the control plane properties
// of ports and links. They are stored in properties.ctrlPlane.
func registerCtrlPlane(t *encoder.Table) {
	for _, local := range []string{
		"granularity",
		"minimumReservableCapacity",
		"maximumReservableCapacity",
		"trafficEngineeringMetric",
	} {
		t.Register(encodeCtrlCapacity, local, NSCtrlPlane)
	}
	t.Register(encodeDescriptors, "switchingCapabilityDescriptors", NSCtrlPlane)
	t.Register(encodeDescriptors, "SwitchingCapabilityDescriptors", NSCtrlPlane)
	t.Register(encodeSpecificInfo, "switchingCapabilitySpecificInfo", NSCtrlPlane)
	for _, local := range []string{
		"switchingcapType",
		"encodingType",
		"capability",
		"vlanRangeAvailability",
	} {
		t.Register(encodeText, local, NSCtrlPlane)
	}
	t.Register(encodeInterfaceMTU, "interfaceMTU", NSCtrlPlane)
	t.Register(encodeVLANTranslation, "vlanTranslation", NSCtrlPlane)
}

// encodeCtrlCapacity stores a capacity valued property under the element's
// local name.
func encodeCtrlCapacity(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	text := el.TrimmedText()
	if text == "" {
		return nil, nil
	}
	v, err := urn.ParseCapacity(text)
	if err != nil {
		return nil, err
	}
	unis.Props(out, unis.NSCtrlPlane)[el.Name.Local] = v
	return v, nil
}

func encodeDescriptors(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	descriptors := unis.Object{}
	unis.Props(out, unis.NSCtrlPlane)["switchingCapabilityDescriptors"] = descriptors
	if _, err := st.Children(el, descriptors, c); err != nil {
		return nil, err
	}
	return descriptors, nil
}

func encodeSpecificInfo(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	info := unis.Object{}
	out[el.Name.Local] = info
	if _, err := st.Children(el, info, c); err != nil {
		return nil, err
	}
	return info, nil
}

// encodeText stores the text of el in out under the element's local name.
func encodeText(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	text := el.TrimmedText()
	if text == "" {
		return nil, nil
	}
	out[el.Name.Local] = text
	return text, nil
}

func encodeInterfaceMTU(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	text := el.TrimmedText()
	if text == "" {
		return nil, nil
	}
	mtu, err := strconv.Atoi(text)
	if err != nil {
		return nil, serrors.JoinNoStack(encoder.ErrInvalidNumber, err,
			"element", el.Name.Local, "value", text)
	}
	out[el.Name.Local] = mtu
	return mtu, nil
}

func encodeVLANTranslation(st *encoder.State, el *source.Element, out unis.Object,
	c encoder.Context) (any, error) {

	text := el.TrimmedText()
	if text == "" {
		return nil, nil
	}
	v, err := urn.ParseStrictBoolean(text)
	if err != nil {
		return nil, err
	}
	out[el.Name.Local] = v
	return v, nil
}
