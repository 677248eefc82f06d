
//此源码被清华学神尹成大魔王专业翻译分析并修改
//尹成QQ77025077
//尹成微信18510341407
//尹成所在QQ群721929980
//尹成邮箱 yinc13@mails.tsinghua.edu.cn
//尹成毕业于清华大学,微软区块链领域全球最有价值专家
//https://mvp.microsoft.com/zh-cn/PublicProfile/4033620
/*
版权所有IBM公司。保留所有权利。

SPDX许可证标识符：Apache-2.0
**/


package shim

import (
	"sync"

	pb "github.com/hyperledger/fabric-protos-go/peer"
	"github.com/ic-matcom/fabric-chaincode-go/common/flogging"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics"
	"github.com/ic-matcom/fabric-chaincode-go/common/metrics/disabled"
	"github.com/pkg/errors"
)

//ErrConnectionClosed是流关闭后所有未完成操作收到的错误
var ErrConnectionClosed = errors.New("chaincode connection closed")

//result是一次账本操作的结果，只写入一次
type result struct {
	msg *pb.ChaincodeMessage
	err error
}

type pendingOp struct {
	msg  *pb.ChaincodeMessage
	resp chan result
	once sync.Once
	done func()
}

func (op *pendingOp) finish(r result) {
	op.once.Do(func() {
		op.resp <- r
		op.done()
	})
}

func (op *pendingOp) fail(err error) {
	op.finish(result{err: err})
}

//messageQueue把一条流拆成按交易上下文（channelID+txid）排序的
//请求/响应通道。每个上下文同一时刻只有队首请求在线上。
type messageQueue struct {
	mutex   sync.Mutex
	queues  map[string][]*pendingOp
	closed  error
	send    func(*pb.ChaincodeMessage) error
	pending metrics.Gauge
	logger  *flogging.FabricLogger
}

func newMessageQueue(send func(*pb.ChaincodeMessage) error, pending metrics.Gauge, logger *flogging.FabricLogger) *messageQueue {
	if pending == nil {
		pending = &disabled.Gauge{}
	}
	return &messageQueue{
		queues:  map[string][]*pendingOp{},
		send:    send,
		pending: pending,
		logger:  logger,
	}
}

//事务上下文ID由chainID和txID组成，同一txid可以在不同通道上并发。
//两者之间用0x00分隔，("ab","c")与("a","bc")不会相同
func txContextID(channelID, txid string) string {
	return channelID + "\x00" + txid
}

//Enqueue把请求追加到上下文队列尾部。队列原本为空时立即发送。
//返回的通道恰好收到一个结果。
func (q *messageQueue) Enqueue(contextID string, msg *pb.ChaincodeMessage) <-chan result {
	op := &pendingOp{
		msg:  msg,
		resp: make(chan result, 1),
	}

	q.mutex.Lock()
	if q.closed != nil {
		closedErr := q.closed
		q.mutex.Unlock()
		op.done = func() {}
		op.fail(closedErr)
		return op.resp
	}
	q.pending.Add(1)
	op.done = func() { q.pending.Add(-1) }
	queue := append(q.queues[contextID], op)
	q.queues[contextID] = queue
	isHead := len(queue) == 1
	q.mutex.Unlock()

	if isHead {
		q.sendHead(contextID, op)
	} else {
		q.logger.Debugf("[%s] queued %s behind %d pending request(s)", shorttxid(msg.Txid), msg.Type, len(queue)-1)
	}
	return op.resp
}

//sendHead发送队首请求，写失败时让队首失败并继续尝试新的队首
func (q *messageQueue) sendHead(contextID string, op *pendingOp) {
	for op != nil {
		err := q.send(op.msg)
		if err == nil {
			return
		}
		q.logger.Errorf("[%s] error sending %s: %s", shorttxid(op.msg.Txid), op.msg.Type, err)

		q.mutex.Lock()
		next := q.popHead(contextID, op)
		q.mutex.Unlock()

		op.fail(errors.WithMessagef(err, "[%s] error sending %s", shorttxid(op.msg.Txid), op.msg.Type))
		op = next
	}
}

//popHead在op仍是队首时将其移除并返回新的队首，调用方持有锁
func (q *messageQueue) popHead(contextID string, op *pendingOp) *pendingOp {
	queue := q.queues[contextID]
	if len(queue) == 0 || queue[0] != op {
		return nil
	}
	queue = queue[1:]
	if len(queue) == 0 {
		delete(q.queues, contextID)
		return nil
	}
	q.queues[contextID] = queue
	return queue[0]
}

//Resolve用对等节点的应答完成上下文的队首请求，RESPONSE为成功，
//ERROR或其它类型为失败，然后发送下一个请求
func (q *messageQueue) Resolve(contextID string, msg *pb.ChaincodeMessage) error {
	q.mutex.Lock()
	queue := q.queues[contextID]
	if len(queue) == 0 {
		q.mutex.Unlock()
		return errors.Errorf("[%s] no pending request for %s on channel [%s]", shorttxid(msg.Txid), msg.Type, msg.ChannelId)
	}
	head := queue[0]
	next := q.popHead(contextID, head)
	q.mutex.Unlock()

	switch msg.Type {
	case pb.ChaincodeMessage_RESPONSE:
		head.finish(result{msg: msg})
	case pb.ChaincodeMessage_ERROR:
		head.finish(result{msg: msg, err: errors.New(string(msg.Payload))})
	default:
		head.finish(result{msg: msg, err: errors.Errorf("[%s] incorrect chaincode message %s received. Expecting %s or %s",
			shorttxid(msg.Txid), msg.Type, pb.ChaincodeMessage_RESPONSE, pb.ChaincodeMessage_ERROR)})
	}

	if next != nil {
		q.sendHead(contextID, next)
	}
	return nil
}

//Cancel放弃等待中的请求。尚未发送的请求直接移出队列，已在线上的
//队首保留到应答到达，以免应答错配到后续请求。
func (q *messageQueue) Cancel(contextID string, resp <-chan result) {
	q.mutex.Lock()
	queue := q.queues[contextID]
	for i := 1; i < len(queue); i++ {
		if (<-chan result)(queue[i].resp) != resp {
			continue
		}
		op := queue[i]
		q.queues[contextID] = append(queue[:i:i], queue[i+1:]...)
		q.mutex.Unlock()
		op.fail(errors.Errorf("[%s] %s request cancelled", shorttxid(op.msg.Txid), op.msg.Type))
		return
	}
	q.mutex.Unlock()
}

//Close让所有上下文中的未完成请求失败，之后的Enqueue立即失败
func (q *messageQueue) Close(cause error) {
	closedErr := ErrConnectionClosed
	if cause != nil {
		closedErr = errors.WithMessage(ErrConnectionClosed, cause.Error())
	}

	q.mutex.Lock()
	if q.closed != nil {
		q.mutex.Unlock()
		return
	}
	q.closed = closedErr
	var ops []*pendingOp
	for _, queue := range q.queues {
		ops = append(ops, queue...)
	}
	q.queues = map[string][]*pendingOp{}
	q.mutex.Unlock()

	for _, op := range ops {
		op.fail(closedErr)
	}
}

//Pending返回所有上下文中未完成的请求数
func (q *messageQueue) Pending() int {
	q.mutex.Lock()
	defer q.mutex.Unlock()
	n := 0
	for _, queue := range q.queues {
		n += len(queue)
	}
	return n
}
