package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/John-Robertt/moviechat/internal/chat"
	"github.com/John-Robertt/moviechat/internal/domain"
)

const prompt = "> "

const banner = `Hi! I answer questions about movies. Try:
  what movies were made in 2010
  what movies were made between 1990 and 1999
  who directed inception
  in what movies did tom hanks appear
Type "limit N" to cap the number of answers, "bye" to leave.
`

const farewell = "So long!"

// prompter 是 REPL 的最小 I/O 抽象：逐行读取输入，并写出回答。
type prompter interface {
	io.Writer
	ReadLine() (string, error)
}

// newPrompter：stdin 是终端时进入 raw 模式（行编辑 + 上下键历史），否则按行扫描。
// 返回的 restore 可重复调用。
func newPrompter(in *os.File, out io.Writer) (prompter, func(), error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return newScanPrompter(in, out), func() {}, nil
	}

	old, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, err
	}
	restored := false
	restore := func() {
		if restored {
			return
		}
		restored = true
		_ = term.Restore(fd, old)
	}

	rw := struct {
		io.Reader
		io.Writer
	}{in, out}
	t := term.NewTerminal(rw, prompt)
	if w, h, err := term.GetSize(fd); err == nil {
		_ = t.SetSize(w, h)
	}
	return t, restore, nil
}

type scanPrompter struct {
	io.Writer
	sc *bufio.Scanner
}

func newScanPrompter(r io.Reader, w io.Writer) *scanPrompter {
	return &scanPrompter{Writer: w, sc: bufio.NewScanner(r)}
}

func (p *scanPrompter) ReadLine() (string, error) {
	if p.sc.Scan() {
		return p.sc.Text(), nil
	}
	if err := p.sc.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// runREPL 循环读取问题直到 bye 或输入结束。
// 会话内指令（bye / limit N）在进入 Bot 之前处理，其余输入一律交给 Bot。
func runREPL(ctx context.Context, p prompter, bot *chat.Bot) error {
	fmt.Fprint(p, banner)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := p.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(p, farewell)
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if chat.IsBye(line) {
			fmt.Fprintln(p, farewell)
			return nil
		}
		if n, isCmd, err := chat.ParseLimit(line); isCmd {
			if err != nil {
				fmt.Fprintln(p, err.Error())
				continue
			}
			bot.Limit = n
			fmt.Fprintf(p, "OK, at most %d answers.\n", n)
			continue
		}

		printAnswer(p, bot.Answer(ctx, line))
	}
}

func printAnswer(w io.Writer, ans domain.Answer) {
	if ans.IsFallback() {
		for _, l := range ans.Lines {
			fmt.Fprintln(w, l)
		}
		return
	}
	for i, l := range ans.Lines {
		fmt.Fprintf(w, "%2d. %s\n", i+1, l)
	}
}
