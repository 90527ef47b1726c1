// Command edusync-player runs a quiz attempt against an EduSync server from
// the terminal: log in, fetch the course assessment, answer one question at a
// time under the clock, get the summary.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/edusync-lms/edusync/internal/api/client"
	"github.com/edusync-lms/edusync/internal/assessment"
)

func main() {
	var (
		server   = flag.String("server", "http://localhost:8080", "EduSync server base URL")
		email    = flag.String("email", "", "account email")
		password = flag.String("password", "", "account password")
		courseID = flag.String("course", "", "course ID to take the assessment of")
		delay    = flag.Duration("feedback", 2*time.Second, "how long a selected answer is shown before advancing")
	)
	flag.Parse()
	if *email == "" || *password == "" || *courseID == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := client.New(*server)
	if err := c.Login(ctx, *email, *password); err != nil {
		log.Fatalf("login: %v", err)
	}

	p := assessment.NewPlayer(assessment.PlayerConfig{
		CourseID:      *courseID,
		Telemetry:     c,
		Attempts:      c,
		FeedbackDelay: *delay,
	})
	defer p.Close()

	if err := p.LoadFrom(ctx, c); err != nil {
		log.Fatalf("load assessment: %v", err)
	}
	if p.State() == assessment.StateNoAssessment {
		fmt.Println("This course has no assessment yet.")
		return
	}

	fmt.Printf("%s  (%d questions, %s on the clock)\n",
		p.Title(), p.NumQuestions(), clock(p.Remaining()))

	go p.Run(ctx)
	in := bufio.NewScanner(os.Stdin)

	for p.State() == assessment.StateActive {
		idx, q := p.Current()
		if q.Text == "" {
			// Between questions during the feedback window.
			time.Sleep(100 * time.Millisecond)
			continue
		}
		fmt.Printf("\n[%s] Q%d/%d: %s\n", clock(p.Remaining()), idx+1, p.NumQuestions(), q.Text)
		for i, opt := range q.Options {
			fmt.Printf("  %d) %s\n", i+1, opt)
		}
		opt, ok := readOption(in)
		if !ok {
			return
		}
		if !p.SelectAnswer(opt) {
			continue
		}
		// Wait out the feedback window so the next prompt shows the next
		// question, not the one just answered.
		waitAdvance(p, idx)
	}

	if sum, done := p.Summary(); done {
		fmt.Printf("\nDone. %d/%d correct, %.1f marks.\n", sum.Correct, sum.Total, sum.TotalMarks)
	}
}

func readOption(in *bufio.Scanner) (int, bool) {
	for {
		fmt.Print("> ")
		if !in.Scan() {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(in.Text()))
		if err != nil || n < 1 || n > assessment.NumOptions {
			fmt.Printf("pick 1-%d\n", assessment.NumOptions)
			continue
		}
		return n - 1, true
	}
}

func waitAdvance(p *assessment.Player, answered int) {
	for p.State() == assessment.StateActive {
		if idx, _ := p.Current(); idx != answered {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}

func clock(secs int) string {
	return fmt.Sprintf("%02d:%02d", secs/60, secs%60)
}
