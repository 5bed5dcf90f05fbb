// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package conntrack

import (
	ct "github.com/ti-mo/conntrack"
)

const protoTCP = 6

// FromFlows converts a netlink conntrack dump into entries, applying the
// same watched-port filter as the text parser. Non-TCP flows and flows
// without a usable original tuple are skipped.
func FromFlows(flows []ct.Flow, watched map[int]bool) []Entry {
	var entries []Entry
	for _, f := range flows {
		if f.TupleOrig.Proto.Protocol != protoTCP {
			continue
		}
		src := f.TupleOrig.IP.SourceAddress
		dst := f.TupleOrig.IP.DestinationAddress
		if !src.IsValid() || !dst.IsValid() {
			continue
		}

		e := Entry{
			Proto:    "tcp",
			SrcIP:    src.Unmap().String(),
			SrcPort:  int(f.TupleOrig.Proto.SourcePort),
			DstIP:    dst.Unmap().String(),
			DstPort:  int(f.TupleOrig.Proto.DestinationPort),
			TimeoutS: int(f.Timeout),
			State:    StateNone,
		}
		if f.ProtoInfo.TCP != nil {
			e.State = TCPStateName(f.ProtoInfo.TCP.State)
		}

		if e.SrcPort == 0 || e.DstPort == 0 || !watched[e.DstPort] {
			continue
		}
		entries = append(entries, e)
	}
	return entries
}
