package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-session-refresh/apiclient"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

type RegisterCmd struct {
	Credentials
	Name string `short:"n" long:"name" required:"true" description:"display name"`
}

func (c *RegisterCmd) Execute([]string) error {
	client, _, err := newClient()
	if err != nil {
		return err
	}
	resp, err := client.Register(context.Background(), apiclient.Registration{
		Email:    c.Email,
		Name:     c.Name,
		Password: c.Password,
	})
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

type GetCmd struct {
	Credentials
	Args pathArg `positional-args:"yes"`
}

func (c *GetCmd) Execute([]string) error {
	ctx := context.Background()
	client, err := loggedIn(ctx, c.Credentials)
	if err != nil {
		return err
	}
	resp, err := client.Get(ctx, c.Args.Path)
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

type PutCmd struct {
	Credentials
	Data string  `short:"d" long:"data" required:"true" description:"JSON body"`
	Args pathArg `positional-args:"yes"`
}

func (c *PutCmd) Execute([]string) error {
	ctx := context.Background()
	client, err := loggedIn(ctx, c.Credentials)
	if err != nil {
		return err
	}
	resp, err := client.Put(ctx, c.Args.Path, []byte(c.Data))
	if err != nil {
		return err
	}
	printResponse(resp)
	return nil
}

// StressCmd waits for the access token to lapse and then fires concurrent requests, so a
// single refresh serves them all.
type StressCmd struct {
	Credentials
	Count int           `short:"c" long:"count" default:"10" description:"concurrent requests"`
	Wait  time.Duration `short:"w" long:"wait" default:"0s" description:"pause before firing, e.g. the access token lifetime"`
	Args  pathArg       `positional-args:"yes"`
}

func (c *StressCmd) Execute([]string) error {
	ctx := context.Background()
	client, reg, err := newClient()
	if err != nil {
		return err
	}
	if _, err := client.Login(ctx, c.Email, c.Password); err != nil {
		return errors.Wrap(err, "login")
	}
	if c.Wait > 0 {
		fmt.Fprintf(os.Stderr, "waiting %s\n", c.Wait)
		time.Sleep(c.Wait)
	}

	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		failed []error
	)
	for i := 0; i < c.Count; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := client.Get(ctx, c.Args.Path); err != nil {
				mu.Lock()
				failed = append(failed, err)
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	fmt.Printf("requests: %d ok, %d failed\n", c.Count-len(failed), len(failed))
	for _, err := range failed {
		fmt.Printf("  %v\n", err)
	}
	return printMetrics(reg)
}

func loggedIn(ctx context.Context, creds Credentials) (*apiclient.Client, error) {
	client, _, err := newClient()
	if err != nil {
		return nil, err
	}
	if _, err := client.Login(ctx, creds.Email, creds.Password); err != nil {
		return nil, errors.Wrap(err, "login")
	}
	return client, nil
}

func printResponse(resp *apiclient.Response) {
	fmt.Printf("%d\n%s\n", resp.StatusCode, strings.TrimSpace(string(resp.Body)))
}

func printMetrics(reg *prometheus.Registry) error {
	families, err := reg.Gather()
	if err != nil {
		return err
	}
	var lines []string
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			name := mf.GetName()
			for _, l := range m.GetLabel() {
				name += fmt.Sprintf(" %s=%s", l.GetName(), l.GetValue())
			}
			switch {
			case m.GetCounter() != nil:
				lines = append(lines, fmt.Sprintf("%s: %g", name, m.GetCounter().GetValue()))
			case m.GetHistogram() != nil:
				lines = append(lines, fmt.Sprintf("%s: %d observations", name, m.GetHistogram().GetSampleCount()))
			}
		}
	}
	sort.Strings(lines)
	for _, l := range lines {
		fmt.Println(l)
	}
	return nil
}
