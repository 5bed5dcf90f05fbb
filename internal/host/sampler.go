// Copyright (C) 2026 Ben Grimm. Licensed under AGPL-3.0 (https://www.gnu.org/licenses/agpl-3.0.txt)

package host

import (
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"grimm.is/lurewatch/internal/netutil"
)

// Info is one sample of host vitals.
type Info struct {
	Hostname   string
	PrimaryIP  string
	UptimeS    float64
	CPUPercent float64
	Load       LoadAvg
	Memory     MemoryInfo
	Disk       DiskInfo
	Ifaces     []IfaceRate
}

// IfaceRate is the observed throughput of one network interface.
type IfaceRate struct {
	Name      string
	RxBytes   uint64
	TxBytes   uint64
	RxBytesPS float64
	TxBytesPS float64
}

type cpuSample struct {
	busy  uint64
	total uint64
}

type ifaceSample struct {
	rx, tx uint64
	at     time.Time
}

// Sampler produces Info samples. CPU percent and interface rates need
// two samples to compute a delta, so the first call reports them as
// zero. Not goroutine-safe; the poll loop owns it.
type Sampler struct {
	procPath string
	sysPath  string
	mount    string

	prevCPU  cpuSample
	havePrev bool
	prevNet  map[string]ifaceSample
}

// NewSampler returns a sampler over the real /proc and /sys trees.
func NewSampler() *Sampler {
	return NewSamplerAt("/proc", "/sys", "/")
}

// NewSamplerAt returns a sampler rooted at alternate paths.
func NewSamplerAt(procPath, sysPath, mount string) *Sampler {
	return &Sampler{
		procPath: procPath,
		sysPath:  sysPath,
		mount:    mount,
		prevNet:  make(map[string]ifaceSample),
	}
}

// Sample reads the current host vitals. Individual readings that fail
// are left at their zero value; a partially filled Info is still
// useful to the host panel.
func (s *Sampler) Sample(now time.Time) Info {
	var info Info
	info.Hostname = netutil.Hostname()
	info.PrimaryIP = netutil.PrimaryIP()
	info.UptimeS, _ = readUptime(s.procPath)
	info.Load, _ = readLoadAvg(s.procPath)
	info.Memory, _ = readMemInfo(s.procPath)
	info.Disk, _ = readDisk(s.mount)
	info.CPUPercent = s.cpuPercent()
	info.Ifaces = s.ifaceRates(now)
	return info
}

// cpuPercent computes busy time over total time since the previous
// sample, from the aggregate cpu line of /proc/stat.
func (s *Sampler) cpuPercent() float64 {
	cur, ok := s.readCPU()
	if !ok {
		return 0
	}
	prev := s.prevCPU
	had := s.havePrev
	s.prevCPU = cur
	s.havePrev = true
	if !had || cur.total <= prev.total {
		return 0
	}
	dTotal := cur.total - prev.total
	dBusy := cur.busy - prev.busy
	if dBusy > dTotal {
		dBusy = dTotal
	}
	return float64(dBusy) / float64(dTotal) * 100
}

func (s *Sampler) readCPU() (cpuSample, bool) {
	data, err := os.ReadFile(filepath.Join(s.procPath, "stat"))
	if err != nil {
		return cpuSample{}, false
	}
	for _, line := range strings.Split(string(data), "\n") {
		fields := strings.Fields(line)
		// Aggregate line is "cpu  user nice system idle iowait irq ...".
		if len(fields) < 5 || fields[0] != "cpu" {
			continue
		}
		var sample cpuSample
		for i, f := range fields[1:] {
			v, err := strconv.ParseUint(f, 10, 64)
			if err != nil {
				break
			}
			sample.total += v
			// idle and iowait are columns 4 and 5.
			if i != 3 && i != 4 {
				sample.busy += v
			}
		}
		return sample, sample.total > 0
	}
	return cpuSample{}, false
}

// ifaceRates reads byte counters for every non-loopback interface and
// derives per-second rates against the previous sample.
func (s *Sampler) ifaceRates(now time.Time) []IfaceRate {
	base := filepath.Join(s.sysPath, "class", "net")
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}

	var rates []IfaceRate
	for _, e := range entries {
		name := e.Name()
		if name == "lo" {
			continue
		}
		rx := readSysUint64(filepath.Join(base, name, "statistics", "rx_bytes"))
		tx := readSysUint64(filepath.Join(base, name, "statistics", "tx_bytes"))

		rate := IfaceRate{Name: name, RxBytes: rx, TxBytes: tx}
		if prev, ok := s.prevNet[name]; ok {
			if dt := now.Sub(prev.at).Seconds(); dt > 0 && rx >= prev.rx && tx >= prev.tx {
				rate.RxBytesPS = float64(rx-prev.rx) / dt
				rate.TxBytesPS = float64(tx-prev.tx) / dt
			}
		}
		s.prevNet[name] = ifaceSample{rx: rx, tx: tx, at: now}
		rates = append(rates, rate)
	}

	sort.Slice(rates, func(i, j int) bool { return rates[i].Name < rates[j].Name })
	return rates
}

// readSysUint64 reads a uint64 value from a sysfs file.
func readSysUint64(path string) uint64 {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0
	}
	val, _ := strconv.ParseUint(strings.TrimSpace(string(data)), 10, 64)
	return val
}
