package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ardakoroglu/synreach/internal/config"
	"github.com/ardakoroglu/synreach/internal/enrich"
	"github.com/ardakoroglu/synreach/internal/iface"
	"github.com/ardakoroglu/synreach/internal/orchestrate"
	"github.com/ardakoroglu/synreach/internal/output"
	"github.com/ardakoroglu/synreach/internal/scan"
	"github.com/ardakoroglu/synreach/internal/tui"
)

var (
	// Flags
	scanTypeFlag string
	portsFlag    string
	timeout      time.Duration
	waitTime     time.Duration
	sendRate     time.Duration
	minimize     bool
	forceIPv4    bool
	forceIPv6    bool
	ifaceName    string
	sourceIP     string
	verbose      bool
	jsonOutput   bool
	csvOutput    bool
	htmlOutput   string
	tuiMode      bool
	noEnrich     bool
	noRDNS       bool
	noColor      bool

	// Config file
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "synreach [flags] <target> [target...]",
	Short: "Concurrent network reachability scanner",
	Long: `synreach probes one or more hosts for port or host reachability using
raw datalink frames or the OS socket stack, and classifies replies into
open/closed/filtered verdicts (or host-alive/host-down for ping modes).

Scan types:
  tcp_syn      Half-open TCP SYN scan (default)
  tcp_connect  Full OS-socket connect scan
  icmp_ping    ICMP echo host discovery
  tcp_ping     TCP SYN host discovery
  udp_ping     UDP host discovery

Examples:
  synreach 192.168.1.1                    SYN scan of the default port range
  synreach -p 22,80,443 10.0.0.5          SYN scan of specific ports
  synreach -T tcp_connect -p 1-1024 host  Full-connect scan
  synreach -T icmp_ping 10.0.0.1 10.0.0.2 Host discovery of listed IPs
  synreach --json host                    JSON output
  synreach --tui host                     Interactive TUI mode
  synreach config --init                  Create default config file

Targets are IP addresses or hostnames; CIDR ranges are not expanded.`,
	Args:              cobra.MinimumNArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              runScan,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/.config/synreach/config.yaml)")

	rootCmd.Flags().StringVarP(&scanTypeFlag, "scan-type", "T", "", "Scan type: tcp_syn, tcp_connect, icmp_ping, tcp_ping, udp_ping")
	rootCmd.Flags().StringVarP(&portsFlag, "ports", "p", "", "Ports to scan, e.g. 22,80,443 or 1-1024 (ignored by ping modes)")

	rootCmd.Flags().DurationVarP(&timeout, "timeout", "w", 0, "Total scan wall-clock budget")
	rootCmd.Flags().DurationVar(&waitTime, "wait-time", 0, "Post-transmit grace period for late replies")
	rootCmd.Flags().DurationVar(&sendRate, "send-rate", 0, "Inter-packet delay between probes")
	rootCmd.Flags().BoolVar(&minimize, "minimize", false, "Use the reduced TCP options set")

	rootCmd.Flags().BoolVarP(&forceIPv4, "ipv4", "4", false, "Resolve targets to IPv4 only")
	rootCmd.Flags().BoolVarP(&forceIPv6, "ipv6", "6", false, "Resolve targets to IPv6 only")
	rootCmd.Flags().StringVarP(&ifaceName, "interface", "i", "", "Network interface to use (name)")
	rootCmd.Flags().StringVarP(&sourceIP, "source", "s", "", "Source IP address")

	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show detailed table output")
	rootCmd.Flags().BoolVarP(&jsonOutput, "json", "j", false, "Output in JSON format")
	rootCmd.Flags().BoolVar(&csvOutput, "csv", false, "Output in CSV format")
	rootCmd.Flags().StringVar(&htmlOutput, "html", "", "Generate HTML report to file")
	rootCmd.Flags().BoolVarP(&tuiMode, "tui", "t", false, "Interactive TUI mode")
	rootCmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.Flags().BoolVar(&noEnrich, "no-enrich", false, "Disable all enrichment")
	rootCmd.Flags().BoolVar(&noRDNS, "no-rdns", false, "Disable reverse DNS lookups")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig loads configuration from file and applies defaults, creating
// a default config at the user config path on first run if none exists
// there.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error

	if cfgFile != "" {
		cfg, err = config.LoadFrom(cfgFile)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg, err = config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}
		if _, statErr := os.Stat(config.GetConfigPath()); os.IsNotExist(statErr) {
			if saveErr := config.DefaultConfig().Save(); saveErr == nil {
				fmt.Fprintf(os.Stderr, "Created default config: %s\n", config.GetConfigPath())
			}
		}
	}

	applyConfigDefaults(cmd)
	return nil
}

// applyConfigDefaults applies config file values for unset flags.
func applyConfigDefaults(cmd *cobra.Command) {
	if cfg == nil {
		return
	}
	d := cfg.Defaults

	if !cmd.Flags().Changed("tui") && d.TUI {
		tuiMode = true
	}
	if !cmd.Flags().Changed("verbose") && d.Verbose {
		verbose = true
	}
	if !cmd.Flags().Changed("json") && d.JSON {
		jsonOutput = true
	}
	if !cmd.Flags().Changed("csv") && d.CSV {
		csvOutput = true
	}
	if !cmd.Flags().Changed("no-color") && d.NoColor {
		noColor = true
	}
	if !cmd.Flags().Changed("scan-type") && d.ScanType != "" {
		scanTypeFlag = d.ScanType
	}
	if !cmd.Flags().Changed("interface") && d.Interface != "" {
		ifaceName = d.Interface
	}
	if !cmd.Flags().Changed("timeout") {
		if d.Timeout > 0 {
			timeout = d.Timeout
		} else {
			timeout = 5 * time.Second
		}
	}
	if !cmd.Flags().Changed("wait-time") {
		if d.WaitTime > 0 {
			waitTime = d.WaitTime
		} else {
			waitTime = 2 * time.Second
		}
	}
	if !cmd.Flags().Changed("send-rate") && d.SendRate > 0 {
		sendRate = d.SendRate
	}
	if !cmd.Flags().Changed("minimize") && d.MinimizePacket {
		minimize = true
	}
	if !cmd.Flags().Changed("ipv4") && d.IPv4 {
		forceIPv4 = true
	}
	if !cmd.Flags().Changed("ipv6") && d.IPv6 {
		forceIPv6 = true
	}
	if !d.Enrichment.Enabled {
		noEnrich = true
	}
	if !cmd.Flags().Changed("no-rdns") && !d.Enrichment.RDNS {
		noRDNS = true
	}
	if scanTypeFlag == "" {
		scanTypeFlag = "tcp_syn"
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("synreach %s\n", version)
		fmt.Printf("  Commit: %s\n", commit)
		fmt.Printf("  Built:  %s\n", date)
		fmt.Printf("  Config: %s\n", config.GetConfigPath())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage synreach configuration file.

Commands:
  synreach config --init     Create default config file
  synreach config --show     Show current configuration
  synreach config --path     Show config file path`,
	RunE: runConfig,
}

var (
	configInit bool
	configShow bool
	configPath bool
)

func init() {
	configCmd.Flags().BoolVar(&configInit, "init", false, "Create default config file")
	configCmd.Flags().BoolVar(&configShow, "show", false, "Show current configuration")
	configCmd.Flags().BoolVar(&configPath, "path", false, "Show config file path")
}

func runConfig(cmd *cobra.Command, args []string) error {
	if configPath {
		fmt.Println(config.GetConfigPath())
		return nil
	}

	if configInit {
		path := config.GetConfigPath()
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file already exists: %s", path)
		}

		c := config.DefaultConfig()
		if err := c.Save(); err != nil {
			return fmt.Errorf("failed to create config: %w", err)
		}
		fmt.Printf("Created config file: %s\n", path)
		return nil
	}

	if configShow {
		data, err := yaml.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to render config: %w", err)
		}
		fmt.Print(string(data))
		return nil
	}

	return cmd.Help()
}

// runScan builds a scan.Setting from flags, resolves targets, runs the
// orchestrator (directly or via the TUI), and writes formatted output.
func runScan(cmd *cobra.Command, args []string) error {
	scanType, err := parseScanType(scanTypeFlag)
	if err != nil {
		return err
	}

	ports, err := parsePorts(portsFlag, scanType)
	if err != nil {
		return err
	}

	if noColor {
		color.NoColor = true
	}

	targets, ipMap, err := resolveTargets(args, ports, forceIPv6)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no resolvable targets")
	}

	ifc, err := resolveInterfaceInfo(ifaceName)
	if err != nil {
		return fmt.Errorf("resolve interface: %w", err)
	}

	srcIP := net.ParseIP(sourceIP)
	if srcIP == nil {
		srcIP = firstInterfaceIP(ifc.Name, forceIPv6)
	}

	setting := &scan.Setting{
		IfIndex:        ifc.Index,
		IfName:         ifc.Name,
		SrcMAC:         ifc.HardwareAddr,
		SrcIP:          srcIP,
		Targets:        targets,
		IPMap:          ipMap,
		ScanType:       scanType,
		Timeout:        timeout,
		WaitTime:       waitTime,
		SendRate:       sendRate,
		MinimizePacket: minimize,
	}

	// One OS-allocated ephemeral port serves as the probe source port for
	// the whole scan.
	if l, err := net.ListenPacket("udp", ":0"); err == nil {
		setting.SrcPort = uint16(l.LocalAddr().(*net.UDPAddr).Port)
		l.Close()
	}

	if scanType != scan.TCPConnectScan && len(targets) > 0 {
		if mac, err := iface.ResolveGatewayMAC(ifc.Name, srcIP, ifc.HardwareAddr, targets[0].IPAddr, timeout); err == nil {
			setting.DstMAC = mac
		}
	}

	outputConfig := output.Config{
		Colors:     !noColor,
		NoHostname: false,
	}

	var result *scan.Result
	if tuiMode {
		result, err = tui.Run(setting)
		if err != nil {
			return err
		}
	} else {
		fmt.Printf("Scanning %d target(s) (%s)...\n", len(targets), scanType)
		result = orchestrate.Run(setting, nil)
	}

	if !noEnrich && !noRDNS {
		enrichResult(result)
	}

	return writeResult(result, outputConfig)
}

// enrichResult backfills missing hostnames via reverse DNS.
func enrichResult(result *scan.Result) {
	if result == nil {
		return
	}
	ips := make([]net.IP, 0, len(result.Hosts))
	for _, h := range result.Hosts {
		if h.HostName == "" {
			ips = append(ips, h.IPAddr)
		}
	}
	if len(ips) == 0 {
		return
	}

	enricher := enrich.NewEnricher(enrich.EnricherConfig{EnableRDNS: true, RDNSTimeout: 2000, CacheSize: 256})
	defer enricher.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	names := enricher.EnrichIPs(ctx, ips)
	for i := range result.Hosts {
		if result.Hosts[i].HostName == "" {
			if name, ok := names[result.Hosts[i].IPAddr.String()]; ok {
				result.Hosts[i].HostName = name
			}
		}
	}
}

func writeResult(result *scan.Result, outputConfig output.Config) error {
	if htmlOutput != "" {
		formatter := output.NewHTMLFormatter(outputConfig)
		if err := output.WriteToFile(result, htmlOutput, formatter); err != nil {
			return fmt.Errorf("failed to write HTML report: %w", err)
		}
		fmt.Fprintf(os.Stderr, "HTML report saved to: %s\n", htmlOutput)
	}

	if tuiMode {
		return nil
	}

	var format output.Format
	switch {
	case jsonOutput:
		format = output.FormatJSON
	case csvOutput:
		format = output.FormatCSV
	case verbose:
		format = output.FormatVerbose
	default:
		format = output.FormatText
	}

	writer := output.NewWriter(format, outputConfig)
	return writer.Write(result)
}

func parseScanType(s string) (scan.Type, error) {
	switch s {
	case "", "tcp_syn":
		return scan.TCPSynScan, nil
	case "tcp_connect":
		return scan.TCPConnectScan, nil
	case "icmp_ping":
		return scan.ICMPPingScan, nil
	case "tcp_ping":
		return scan.TCPPingScan, nil
	case "udp_ping":
		return scan.UDPPingScan, nil
	default:
		return scan.TCPSynScan, fmt.Errorf("unknown scan type %q", s)
	}
}

// parsePorts parses a comma-separated list of ports and ranges
// (e.g. "22,80,8000-8010"). Ping modes ignore the port list entirely.
func parsePorts(s string, scanType scan.Type) ([]uint16, error) {
	if !scanType.IsPortScan() {
		return nil, nil
	}
	if s == "" {
		s = "1-1024"
	}

	var ports []uint16
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if dash := strings.Index(part, "-"); dash >= 0 {
			lo, err := strconv.Atoi(part[:dash])
			if err != nil {
				return nil, fmt.Errorf("invalid port range %q: %w", part, err)
			}
			hi, err := strconv.Atoi(part[dash+1:])
			if err != nil {
				return nil, fmt.Errorf("invalid port range %q: %w", part, err)
			}
			for p := lo; p <= hi; p++ {
				ports = append(ports, uint16(p))
			}
			continue
		}
		p, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid port %q: %w", part, err)
		}
		ports = append(ports, uint16(p))
	}
	return ports, nil
}

// resolveTargets resolves each positional argument (IP or hostname) to a
// scan.HostTarget, recording the original hostname for output
// enrichment.
func resolveTargets(args []string, ports []uint16, wantIPv6 bool) ([]scan.HostTarget, map[string]string, error) {
	targets := make([]scan.HostTarget, 0, len(args))
	ipMap := make(map[string]string)

	for _, arg := range args {
		ip := net.ParseIP(arg)
		if ip != nil {
			targets = append(targets, scan.HostTarget{IPAddr: ip, Ports: ports})
			continue
		}

		addrs, err := net.LookupIP(arg)
		if err != nil || len(addrs) == 0 {
			return nil, nil, fmt.Errorf("resolve target %q: %w", arg, err)
		}

		resolved := pickAddr(addrs, wantIPv6)
		if resolved == nil {
			return nil, nil, fmt.Errorf("no usable address for target %q", arg)
		}
		targets = append(targets, scan.HostTarget{IPAddr: resolved, Ports: ports})
		ipMap[resolved.String()] = arg
	}

	return targets, ipMap, nil
}

func pickAddr(addrs []net.IP, wantIPv6 bool) net.IP {
	for _, a := range addrs {
		isV4 := a.To4() != nil
		if wantIPv6 && !isV4 {
			return a
		}
		if !wantIPv6 && isV4 {
			return a
		}
	}
	if len(addrs) > 0 && !forceIPv4 && !wantIPv6 {
		return addrs[0]
	}
	return nil
}

// resolveInterfaceInfo resolves name to its live interface, or picks the
// first non-loopback interface carrying an address when name is empty.
func resolveInterfaceInfo(name string) (*iface.Info, error) {
	if name != "" {
		ifc, err := net.InterfaceByName(name)
		if err != nil {
			return nil, err
		}
		return iface.ByIndex(ifc.Index)
	}

	ifcs, err := net.Interfaces()
	if err != nil {
		return nil, err
	}
	for _, ifc := range ifcs {
		if ifc.Flags&net.FlagLoopback != 0 || ifc.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := ifc.Addrs()
		if err != nil || len(addrs) == 0 {
			continue
		}
		return iface.ByIndex(ifc.Index)
	}
	return nil, fmt.Errorf("no usable network interface found")
}

// firstInterfaceIP returns the first address of the requested family
// bound to the named interface.
func firstInterfaceIP(name string, wantIPv6 bool) net.IP {
	ifc, err := net.InterfaceByName(name)
	if err != nil {
		return nil
	}
	addrs, err := ifc.Addrs()
	if err != nil {
		return nil
	}
	for _, a := range addrs {
		ipNet, ok := a.(*net.IPNet)
		if !ok {
			continue
		}
		isV4 := ipNet.IP.To4() != nil
		if wantIPv6 && !isV4 {
			return ipNet.IP
		}
		if !wantIPv6 && isV4 {
			return ipNet.IP
		}
	}
	return nil
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets version information for the CLI.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}
