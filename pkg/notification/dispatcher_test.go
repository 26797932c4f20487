package notification_test

import (
	"context"
	"fmt"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"

	ngv1 "github.com/nodeguardian/nodeguardian/pkg/apis/nodeguardian/v1"
	"github.com/nodeguardian/nodeguardian/pkg/notification"
)

type recordingChannel struct {
	name    string
	fail    bool
	sent    []string
}

func (c *recordingChannel) Name() string { return c.name }
func (c *recordingChannel) Send(_ context.Context, subject, _ string, _ notification.Phase, _ notification.AlertContext) error {
	if c.fail {
		return fmt.Errorf("boom")
	}
	c.sent = append(c.sent, subject)
	return nil
}

var _ = Describe("alert dispatcher", func() {
	It("renders the template and sends to every requested channel", func() {
		registry := notification.NewTemplateRegistry([]ngv1.AlertTemplate{
			{
				ObjectMeta: metav1.ObjectMeta{Name: "default"},
				Spec:       ngv1.AlertTemplateSpec{Subject: "[{{ severity }}] {{ rule_name }}", Body: "body"},
			},
		})
		log := &recordingChannel{name: "log"}
		chat := &recordingChannel{name: "chat"}
		d := notification.New(registry, []notification.Channel{log, chat}, []string{"log"}, logr.Discard())

		errs := d.Dispatch(context.Background(), "default", []string{"log", "chat"}, notification.PhaseTrigger,
			notification.AlertContext{RuleName: "high-cpu", Severity: "warning"})

		Expect(errs).To(BeEmpty())
		Expect(log.sent).To(ConsistOf("[warning] high-cpu"))
		Expect(chat.sent).To(ConsistOf("[warning] high-cpu"))
	})

	It("isolates one channel's failure from the others", func() {
		registry := notification.NewTemplateRegistry([]ngv1.AlertTemplate{
			{ObjectMeta: metav1.ObjectMeta{Name: "default"}, Spec: ngv1.AlertTemplateSpec{Subject: "s", Body: "b"}},
		})
		failing := &recordingChannel{name: "webhook", fail: true}
		ok := &recordingChannel{name: "log"}
		d := notification.New(registry, []notification.Channel{failing, ok}, nil, logr.Discard())

		errs := d.Dispatch(context.Background(), "default", []string{"webhook", "log"}, notification.PhaseTrigger, notification.AlertContext{})

		Expect(errs).To(HaveLen(1))
		Expect(ok.sent).To(HaveLen(1))
	})

	It("routes to a replacement channel set after SetChannels", func() {
		registry := notification.NewTemplateRegistry([]ngv1.AlertTemplate{
			{ObjectMeta: metav1.ObjectMeta{Name: "default"}, Spec: ngv1.AlertTemplateSpec{Subject: "s", Body: "b"}},
		})
		oldChan := &recordingChannel{name: "webhook"}
		d := notification.New(registry, []notification.Channel{oldChan}, nil, logr.Discard())

		newChan := &recordingChannel{name: "webhook"}
		d.SetChannels([]notification.Channel{newChan})

		errs := d.Dispatch(context.Background(), "default", []string{"webhook"}, notification.PhaseTrigger, notification.AlertContext{})

		Expect(errs).To(BeEmpty())
		Expect(oldChan.sent).To(BeEmpty())
		Expect(newChan.sent).To(HaveLen(1))
	})

	It("falls back to the template's default channel list when none are requested", func() {
		registry := notification.NewTemplateRegistry([]ngv1.AlertTemplate{
			{
				ObjectMeta: metav1.ObjectMeta{Name: "default"},
				Spec:       ngv1.AlertTemplateSpec{Subject: "s", Body: "b", Channels: []ngv1.ChannelRef{"log"}},
			},
		})
		log := &recordingChannel{name: "log"}
		d := notification.New(registry, []notification.Channel{log}, nil, logr.Discard())

		errs := d.Dispatch(context.Background(), "default", nil, notification.PhaseTrigger, notification.AlertContext{})

		Expect(errs).To(BeEmpty())
		Expect(log.sent).To(HaveLen(1))
	})
})
