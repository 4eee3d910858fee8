package jobqueue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
)

// Client holds the AMQP connection shared by all job subscriptions.
// Consuming and publishing run on separate channels: deliveries arrive on
// the consumer channel while completions go out through the publisher, so a
// publish-level channel exception can never tear down the delivery streams.
type Client struct {
	conn        *amqp.Connection
	ch          *amqp.Channel
	queuePrefix string
	publisher   *completionPublisher
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	parsed, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if parsed.Scheme != "amqp" && parsed.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewClient connects to the broker, opens the consumer and publisher
// channels, and declares the completion exchange.
func NewClient(amqpURL, queuePrefix, completionExchange string) (*Client, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	// Bounded dial timeout so startup does not hang indefinitely.
	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	pubCh, err := conn.Channel()
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	if err := pubCh.ExchangeDeclare(completionExchange, "topic", true, false, false, false, nil); err != nil {
		pubCh.Close()
		ch.Close()
		conn.Close()
		return nil, err
	}

	return &Client{
		conn:        conn,
		ch:          ch,
		queuePrefix: queuePrefix,
		publisher: &completionPublisher{
			ch:          pubCh,
			exchange:    completionExchange,
			openChannel: func() (amqpChannel, error) { return conn.Channel() },
		},
	}, nil
}

// Subscribe starts pulling activated jobs of one job type. Up to
// maxJobsActive jobs run concurrently, each on its own goroutine; the
// delivery is acknowledged only after its completion has been published.
func (c *Client) Subscribe(jobType string, maxJobsActive int, handler Handler) error {
	if handler == nil {
		return errors.New("no handler provided")
	}
	if maxJobsActive <= 0 {
		maxJobsActive = 1
	}

	queueName := jobType
	if c.queuePrefix != "" {
		queueName = c.queuePrefix + "." + jobType
	}

	q, err := c.ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return err
	}

	// Prefetch matches the in-flight bound so the broker never over-delivers.
	if err := c.ch.Qos(maxJobsActive, 0, false); err != nil {
		return err
	}

	consumerTag := fmt.Sprintf("%s-%s", jobType, uuid.NewString())
	msgs, err := c.ch.Consume(q.Name, consumerTag, false, false, false, false, nil)
	if err != nil {
		return err
	}

	log.Printf("level=info component=jobqueue msg=\"worker subscribed\" job_type=%s queue=%s max_jobs_active=%d", jobType, q.Name, maxJobsActive)

	sem := make(chan struct{}, maxJobsActive)
	go func() {
		for d := range msgs {
			sem <- struct{}{}
			go func(d amqp.Delivery) {
				defer func() { <-sem }()
				c.process(jobType, d, handler)
			}(d)
		}
	}()

	return nil
}

func (c *Client) process(jobType string, d amqp.Delivery, handler Handler) {
	var activation jobActivation
	if err := json.Unmarshal(d.Body, &activation); err != nil {
		log.Printf("level=warn component=jobqueue job_type=%s msg=\"undecodable activation; acknowledging to drop\" err=%v", jobType, err)
		d.Ack(false)
		return
	}

	job := Job{
		Key:       activation.JobKey,
		Type:      jobType,
		Variables: activation.Variables,
	}
	if job.Key == "" {
		job.Key = uuid.NewString()
	}
	if job.Variables == nil {
		job.Variables = map[string]any{}
	}

	variables := handler(job)

	if err := c.publishCompletion(jobType, job.Key, variables); err != nil {
		log.Printf("level=error component=jobqueue job_type=%s job_key=%s msg=\"completion publish failed; re-queuing\" err=%v", jobType, job.Key, err)
		d.Nack(false, true)
		return
	}
	d.Ack(false)
}

// publishCompletion reports the job's result variables to the orchestrator.
func (c *Client) publishCompletion(jobType, jobKey string, variables map[string]any) error {
	body, err := json.Marshal(jobCompletion{JobKey: jobKey, Variables: variables})
	if err != nil {
		return err
	}
	return c.publisher.publish(jobType+".completed", body)
}

// Close gracefully closes the channels and connection.
func (c *Client) Close() {
	if c.publisher != nil {
		c.publisher.close()
	}
	if c.ch != nil {
		c.ch.Close()
	}
	if c.conn != nil {
		c.conn.Close()
	}
}

// amqpChannel is the slice of the AMQP channel surface the publisher touches.
type amqpChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Close() error
}

// completionPublisher owns the outbound channel for completion publishes.
// Every process goroutine funnels through the mutex, which also serializes
// the reopen recovery: a failed publish gets a single retry on a fresh
// channel, and in-flight publishers never observe the swap mid-write.
type completionPublisher struct {
	mu          sync.Mutex
	ch          amqpChannel
	exchange    string
	openChannel func() (amqpChannel, error)
}

func (p *completionPublisher) publish(routingKey string, body []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	publishing := amqp.Publishing{
		ContentType: "application/json",
		Timestamp:   time.Now(),
		Body:        body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, publishing); err != nil {
		log.Printf("level=warn component=jobqueue msg=\"publish failed; reopening channel\" routing_key=%s err=%v", routingKey, err)
		ch, chErr := p.openChannel()
		if chErr != nil {
			return err
		}
		p.ch.Close()
		p.ch = ch
		if exErr := p.ch.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); exErr != nil {
			return exErr
		}
		return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, publishing)
	}
	return nil
}

func (p *completionPublisher) close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
}
