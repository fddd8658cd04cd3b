package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-rotation/backend/internal/domain"
)

// CheckWorklog 同步执行一次检查，部分记录失败时仍然返回报告
func (h *Handler) CheckWorklog(w http.ResponseWriter, r *http.Request) {
	report := h.reconciler.Sweep(r.Context())

	msg := "检查工作日志完成"
	switch {
	case report.LockSkipped:
		msg = "已有检查正在进行，本次跳过"
	case report.Failed():
		msg = "检查工作日志完成，但部分记录处理失败"
	}

	h.successResponse(w, r, msg, report)
}

// EnqueueCheckWorklog 把检查请求交给后台消费者执行
func (h *Handler) EnqueueCheckWorklog(w http.ResponseWriter, r *http.Request) {
	body, err := json.Marshal(domain.ReconcileRequest{
		Source:      "cron",
		RequestedAt: h.clock.Now(),
	})
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.reconcileChannel.PublishWithContext(
		ctx,
		"",
		h.config.RabbitMQ.ReconcileQueue,
		true,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "检查请求已提交", nil)
}
