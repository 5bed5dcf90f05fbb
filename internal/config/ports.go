// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package config

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"grimm.is/lurewatch/internal/errors"
)

var portListSep = regexp.MustCompile(`[,\s]+`)

// ParsePortList parses a comma or whitespace separated list of ports and
// inclusive a-b ranges, e.g. "22,80,443" or "20-25 8080". The result is
// sorted and de-duplicated. Tokens that are not ports or ranges, or that
// fall outside 1-65535, are rejected.
func ParsePortList(s string) ([]int, error) {
	seen := make(map[int]struct{})
	for _, tok := range portListSep.Split(strings.TrimSpace(s), -1) {
		if tok == "" {
			continue
		}
		if a, b, ok := strings.Cut(tok, "-"); ok {
			lo, err := parsePort(a)
			if err != nil {
				return nil, err
			}
			hi, err := parsePort(b)
			if err != nil {
				return nil, err
			}
			if hi < lo {
				lo, hi = hi, lo
			}
			for p := lo; p <= hi; p++ {
				seen[p] = struct{}{}
			}
			continue
		}
		p, err := parsePort(tok)
		if err != nil {
			return nil, err
		}
		seen[p] = struct{}{}
	}

	ports := make([]int, 0, len(seen))
	for p := range seen {
		ports = append(ports, p)
	}
	sort.Ints(ports)
	return ports, nil
}

func parsePort(s string) (int, error) {
	p, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, errors.Errorf(errors.KindValidation, "invalid port %q", s)
	}
	if p < 1 || p > 65535 {
		return 0, errors.Errorf(errors.KindValidation, "port %d out of range", p)
	}
	return p, nil
}
