package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/fatih/color"
	"github.com/samvad-hq/scrafurl/internal/app"
	"github.com/samvad-hq/scrafurl/internal/config"
	"github.com/samvad-hq/scrafurl/internal/extract"
	"github.com/samvad-hq/scrafurl/internal/logger"
	"github.com/samvad-hq/scrafurl/pkg/httpclient"
	"github.com/spf13/cobra"
)

// errNoResponse marks a request that never produced an HTTP response. The
// transport error has already been printed.
var errNoResponse = errors.New("no response")

type requestFlags struct {
	method  string
	headers []string
	data    string
	include bool
	version string
	scheme  string
	sel     string
	attr    string
	meta    bool
	sitemap bool
}

func newRootCmd(cfg *config.Config, log logger.Logger) *cobra.Command {
	var f requestFlags

	cmd := &cobra.Command{
		Use:   "scrafurl [flags] URL",
		Short: "Issue a single HTTP request and print the response.",
		Long: `scrafurl sends one request and writes the response body to stdout.

Headers are raw lines applied in order:
  -H "X-Trace: a"     add a value
  -H "User-Agent:"    remove a default header
  -H "X-Empty;"       send a header with no value

Examples:
  scrafurl example.com
  scrafurl -X POST -d '{"a":1}' -H "Content-Type: application/json" https://api.example.com/items
  scrafurl --select "a" --attr href https://example.com`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return doRequest(cmd, cfg, log, f, args[0])
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.method, "request", "X", "", "request method (GET, POST, PUT, PATCH, DELETE)")
	flags.StringArrayVarP(&f.headers, "header", "H", nil, "header line, repeatable")
	flags.StringVarP(&f.data, "data", "d", "", "request body; implies POST when -X is not given")
	flags.BoolVarP(&f.include, "include", "i", false, "print the status line before the body")
	flags.StringVar(&f.version, "http", "", "protocol preference: 1.1, 2, 2tls or 3")
	flags.StringVar(&f.scheme, "scheme", "", "scheme for URLs without one (http or https)")
	flags.StringVar(&f.sel, "select", "", "print nodes matching a CSS selector instead of the body")
	flags.StringVar(&f.attr, "attr", "", "with --select, print this attribute instead of node text")
	flags.BoolVar(&f.meta, "meta", false, "print page title, description and image instead of the body")
	flags.BoolVar(&f.sitemap, "sitemap", false, "print the <loc> URLs of a sitemap instead of the body")

	cmd.AddCommand(newRunCmd(cfg, log))
	cmd.AddCommand(newHistoryCmd(cfg, log))
	return cmd
}

func doRequest(cmd *cobra.Command, cfg *config.Config, log logger.Logger, f requestFlags, url string) error {
	if f.attr != "" && f.sel == "" {
		return fmt.Errorf("--attr requires --select")
	}

	method := f.method
	if method == "" {
		method = http.MethodGet
		if cmd.Flags().Changed("data") {
			method = http.MethodPost
		}
	}
	m, err := httpclient.ParseMethod(method)
	if err != nil {
		return err
	}

	var opts []httpclient.Option
	if f.version != "" {
		v, err := httpclient.ParseHTTPVersion(f.version)
		if err != nil {
			return err
		}
		opts = append(opts, httpclient.WithHTTPVersion(v))
	}
	if f.scheme != "" {
		opts = append(opts, httpclient.WithDefaultScheme(strings.ToLower(f.scheme)))
	}

	client, err := app.NewClient(cfg, log, opts...)
	if err != nil {
		return err
	}
	defer client.Close()

	client.Do(m, url, f.data, f.headers...)

	code := client.ResponseCode()
	if code == httpclient.NoResponse {
		msg := "no response"
		if err := client.Err(); err != nil {
			msg = err.Error()
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "scrafurl: %s\n", msg)
		return errNoResponse
	}

	out := cmd.OutOrStdout()
	if f.include {
		fmt.Fprintf(out, "%s\n\n", statusLine(code))
	}

	body := client.ResponseBody()
	switch {
	case f.sitemap:
		locs, err := extract.Sitemap(body)
		if err != nil {
			return err
		}
		for _, loc := range locs {
			fmt.Fprintln(out, loc)
		}
		return nil
	case f.meta:
		meta, err := extract.Meta(body)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(meta.Resolve(url))
	case f.sel != "":
		values, err := extract.Select(body, f.sel, f.attr)
		if err != nil {
			return err
		}
		for _, v := range values {
			fmt.Fprintln(out, v)
		}
		return nil
	default:
		_, err := out.Write(body)
		return err
	}
}

func statusLine(code int) string {
	line := fmt.Sprintf("HTTP %d %s", code, http.StatusText(code))
	switch {
	case code >= 500:
		return color.New(color.FgRed, color.Bold).Sprint(line)
	case code >= 400:
		return color.New(color.FgYellow).Sprint(line)
	default:
		return color.New(color.FgGreen).Sprint(line)
	}
}
